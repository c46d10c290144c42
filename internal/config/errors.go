package config

import (
	"errors"
	"fmt"
)

// ErrStoreClosed is returned by operations on a closed Store.
var ErrStoreClosed = errors.New("config store is closed")

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Key is the dotted setting name, e.g. "history.max_undo".
	Key string
	// Value is the invalid value.
	Value any
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Key, e.Message, e.Value)
}

func invalid(key string, value any, msg string) error {
	return &ValidationError{Key: key, Value: value, Message: msg}
}
