package response

import "github.com/gin-gonic/gin"

const (
	CodeValidationFailed = "validation_failed"
	CodeRetrievalFailed  = "retrieval_failed"
	CodeGenerationFailed = "generation_failed"
	CodeInternalError    = "internal_error"
)

// ErrorBody is the JSON shape of every failed API call.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus int, summary, code, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{
		Error:   summary,
		Code:    code,
		Message: message,
	})
}
