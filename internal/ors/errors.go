package ors

import "errors"

var (
	ErrNotFound     = errors.New("ors: record not found")
	ErrForbidden    = errors.New("ors: operation not allowed")
	ErrInvalidInput = errors.New("ors: invalid input")
)
