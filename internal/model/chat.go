package model

type ChatAnswer struct {
	Text string `json:"answer"`
}
