// FILE: internal/dto/job_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"quantcloud-be/internal/entity"
)

type SubmitJobRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	InputFileId  string `json:"input_file_id" validate:"required,uuid4"`
	Method       string `json:"method" validate:"required,oneof=int8 gptq awq gguf_q4_0 gguf_q5_0"`
	OutputFormat string `json:"output_format" validate:"required,oneof=pytorch safetensors onnx gguf"`
}

type ResubmitJobRequest struct {
	Name string `json:"name" validate:"omitempty,min=1,max=100"`
}

type ProgressRequest struct {
	Progress int `json:"progress" validate:"min=0,max=100"`
}

type JobResponse struct {
	Id               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	Method           string     `json:"method"`
	InputFormat      string     `json:"input_format"`
	OutputFormat     string     `json:"output_format"`
	InputFileId      uuid.UUID  `json:"input_file_id"`
	OutputFileId     *uuid.UUID `json:"output_file_id,omitempty"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	OriginalSize     int64      `json:"original_size"`
	QuantizedSize    *int64     `json:"quantized_size,omitempty"`
	CompressionRatio *float64   `json:"compression_ratio,omitempty"`
	ProcessingTime   *int       `json:"processing_time_seconds,omitempty"`
	CreditsCharged   int        `json:"credits_charged"`
	RetryOfJobId     *uuid.UUID `json:"retry_of_job_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func NewJobResponse(j *entity.Job) *JobResponse {
	return &JobResponse{
		Id:               j.Id,
		Name:             j.Name,
		Status:           string(j.Status),
		Progress:         j.Progress,
		Method:           string(j.Method),
		InputFormat:      string(j.InputFormat),
		OutputFormat:     string(j.OutputFormat),
		InputFileId:      j.InputFileId,
		OutputFileId:     j.OutputFileId,
		ErrorMessage:     j.ErrorMessage,
		OriginalSize:     j.OriginalSize,
		QuantizedSize:    j.QuantizedSize,
		CompressionRatio: j.CompressionRatio(),
		ProcessingTime:   j.ProcessingTime,
		CreditsCharged:   j.CreditsCharged,
		RetryOfJobId:     j.RetryOfJobId,
		CreatedAt:        j.CreatedAt,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
	}
}

type JobStatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
}

type ReportResponse struct {
	JobId                     uuid.UUID `json:"job_id"`
	OriginalPerplexity        float64   `json:"original_perplexity"`
	QuantizedPerplexity       float64   `json:"quantized_perplexity"`
	QualityLossPercent        float64   `json:"quality_loss_percent"`
	LatencyImprovementPercent float64   `json:"latency_improvement_percent"`
	CostSavingsPercent        float64   `json:"cost_savings_percent"`
	ReductionPercent          float64   `json:"reduction_percent"`
	CreatedAt                 time.Time `json:"created_at"`
}
