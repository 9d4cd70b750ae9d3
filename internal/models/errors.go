package models

import (
	"errors"
	"fmt"
)

// Form related errors
var (
	ErrFormNotFound  = errors.New("form not found")
	ErrDuplicateForm = errors.New("form id already registered")
)

// Prediction service errors
var (
	ErrMalformedResponse = errors.New("malformed prediction response")
)

// History related errors
var (
	ErrHistoryDisabled = errors.New("prediction history is disabled")
)

type FormError struct {
	Issue string
}

func (fe FormError) Error() string {
	return fmt.Sprintf("invalid form: %v", fe.Issue)
}
