// FILE: internal/dto/message_dto.go
package dto

import "github.com/google/uuid"

// JobCompletedMessage travels over the in-process bus from the worker to
// the report consumer.
type JobCompletedMessage struct {
	JobId                     uuid.UUID `json:"job_id"`
	OriginalPerplexity        float64   `json:"original_perplexity"`
	QuantizedPerplexity       float64   `json:"quantized_perplexity"`
	QualityLossPercent        float64   `json:"quality_loss_percent"`
	LatencyImprovementPercent float64   `json:"latency_improvement_percent"`
	CostSavingsPercent        float64   `json:"cost_savings_percent"`
	ReductionPercent          float64   `json:"reduction_percent"`
}
