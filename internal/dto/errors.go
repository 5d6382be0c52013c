// FILE: internal/dto/errors.go
// Typed domain errors surfaced by the engine's mutation entry points.
package dto

import (
	"errors"
	"fmt"

	"quantcloud-be/internal/entity"
)

var (
	// ErrNoJobAvailable is benign: no pending job to claim, poll again later.
	ErrNoJobAvailable = errors.New("no job available")

	// ErrTokenInvalid is deliberately generic: it does not distinguish an
	// expired token from a consumed one.
	ErrTokenInvalid = errors.New("invalid download token")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// InsufficientCreditError is a business rule failure, not retryable
// without a plan change.
type InsufficientCreditError struct {
	Required  int `json:"required"`
	Available int `json:"available"`
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credits: %d required, %d available", e.Required, e.Available)
}

// IntegrityError signals a checksum mismatch on file registration. The
// file is rejected and never registered.
type IntegrityError struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (e *IntegrityError) Error() string {
	return "checksum mismatch: file rejected"
}

// WorkerError wraps a failure reported by the quantization worker.
// Transient errors permit a fresh submission as a new job; Fatal ones do
// not.
type WorkerError struct {
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

func (e *WorkerError) Error() string {
	return e.Message
}

// InvalidCombinationError rejects a submit whose input format does not
// suit the requested method/output pair.
type InvalidCombinationError struct {
	Method       entity.QuantizationMethod `json:"method"`
	InputFormat  entity.ModelFormat        `json:"input_format"`
	OutputFormat entity.ModelFormat        `json:"output_format"`
}

func (e *InvalidCombinationError) Error() string {
	return fmt.Sprintf("method %s cannot convert %s to %s", e.Method, e.InputFormat, e.OutputFormat)
}
