package app

import "errors"

var (
	ErrValidation    = errors.New("invalid query")
	ErrRetrieval     = errors.New("retrieval failed")
	ErrGeneration    = errors.New("generation failed")
	ErrConfiguration = errors.New("configuration invalid")
)
