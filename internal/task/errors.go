package task

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrSelectorNil  = errors.New("storage selector is nil")
)
