// FILE: internal/entity/job_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type QuantizationMethod string

const (
	MethodInt8     QuantizationMethod = "int8"
	MethodGptq     QuantizationMethod = "gptq"
	MethodAwq      QuantizationMethod = "awq"
	MethodGgufQ4_0 QuantizationMethod = "gguf_q4_0"
	MethodGgufQ5_0 QuantizationMethod = "gguf_q5_0"
)

// BaseCost is the per-method credit cost before size scaling.
func (m QuantizationMethod) BaseCost() int {
	switch m {
	case MethodGptq, MethodAwq:
		return 2
	default:
		return 1
	}
}

type ModelFormat string

const (
	FormatPyTorch     ModelFormat = "pytorch"
	FormatSafetensors ModelFormat = "safetensors"
	FormatOnnx        ModelFormat = "onnx"
	FormatGguf        ModelFormat = "gguf"
)

// Compatible reports whether the method accepts the input format and can
// produce the output format.
func (m QuantizationMethod) Compatible(input, output ModelFormat) bool {
	switch m {
	case MethodInt8:
		return input == FormatOnnx && output == FormatOnnx
	case MethodGptq, MethodAwq:
		return (input == FormatPyTorch || input == FormatSafetensors) &&
			(output == FormatPyTorch || output == FormatSafetensors)
	case MethodGgufQ4_0, MethodGgufQ5_0:
		return (input == FormatPyTorch || input == FormatSafetensors) &&
			output == FormatGguf
	default:
		return false
	}
}

// Job is one request to transform a model file. Invariants: OutputFileId
// is set iff Status is completed; Progress never decreases while
// processing; a job holds at most one processing claim at a time.
type Job struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Name           string
	Status         JobStatus
	Progress       int
	Method         QuantizationMethod
	InputFormat    ModelFormat
	OutputFormat   ModelFormat
	InputFileId    uuid.UUID
	OutputFileId   *uuid.UUID
	ErrorMessage   *string
	OriginalSize   int64
	QuantizedSize  *int64
	ProcessingTime *int
	CreditsCharged int
	RetryOfJobId   *uuid.UUID
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	UpdatedAt      time.Time
}

// Start moves a pending job into processing.
func (j *Job) Start(now time.Time) error {
	if j.Status != JobStatusPending {
		return &InvalidTransitionError{From: j.Status, To: JobStatusProcessing}
	}
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.Progress = 10
	j.UpdatedAt = now
	return nil
}

// Complete finalizes a processing job with its output.
func (j *Job) Complete(outputFileId uuid.UUID, quantizedSize int64, now time.Time) error {
	if j.Status != JobStatusProcessing {
		return &InvalidTransitionError{From: j.Status, To: JobStatusCompleted}
	}
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.OutputFileId = &outputFileId
	j.QuantizedSize = &quantizedSize
	j.CompletedAt = &now
	if j.StartedAt != nil {
		secs := int(now.Sub(*j.StartedAt).Seconds())
		j.ProcessingTime = &secs
	}
	j.UpdatedAt = now
	return nil
}

// Fail marks a processing job failed with a user-visible message.
func (j *Job) Fail(message string, now time.Time) error {
	if j.Status != JobStatusProcessing {
		return &InvalidTransitionError{From: j.Status, To: JobStatusFailed}
	}
	j.Status = JobStatusFailed
	j.ErrorMessage = &message
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Cancel marks the job cancelled. Cancelling a processing job is
// cooperative: the worker observes the flag at its own checkpoints.
func (j *Job) Cancel(now time.Time) error {
	if j.Status != JobStatusPending && j.Status != JobStatusProcessing {
		return &InvalidTransitionError{From: j.Status, To: JobStatusCancelled}
	}
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// UpdateProgress applies a progress report. Decreases are rejected while
// processing; reports after a terminal state are accepted but do not
// change the stored status (cancellation wins).
func (j *Job) UpdateProgress(percent int, now time.Time) error {
	if percent < 0 || percent > 100 {
		return &InvalidTransitionError{From: j.Status, To: j.Status}
	}
	if j.Status.Terminal() {
		// Late report from a worker that has not observed the flag yet.
		return nil
	}
	if j.Status != JobStatusProcessing {
		return &InvalidTransitionError{From: j.Status, To: JobStatusProcessing}
	}
	if percent < j.Progress {
		return &InvalidTransitionError{From: j.Status, To: j.Status}
	}
	j.Progress = percent
	j.UpdatedAt = now
	return nil
}

// CompressionRatio returns quantized/original size, if both are known.
func (j *Job) CompressionRatio() *float64 {
	if j.QuantizedSize == nil || j.OriginalSize <= 0 {
		return nil
	}
	r := float64(*j.QuantizedSize) / float64(j.OriginalSize)
	return &r
}

// InvalidTransitionError signals an illegal state machine transition,
// usually a race with a concurrent terminal transition.
type InvalidTransitionError struct {
	From JobStatus
	To   JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return "invalid job transition from " + string(e.From) + " to " + string(e.To)
}
