package application

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError represents a validation failure with details.
// Values lists the offending inputs, when there are any.
type ValidationError struct {
	Field   string
	Message string
	Values  []string
}

func (e *ValidationError) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Message, strings.Join(quoted, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError represents a failed read or write on the storage medium
type PersistenceError struct {
	Op  string // read, write, delete, keys, move
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s failed: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistenceErr(op, key string, err error) error {
	return &PersistenceError{Op: op, Key: key, Err: err}
}
