// FILE: internal/entity/report_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// QuantizationReport is the quality summary attached to a completed job.
type QuantizationReport struct {
	Id                        uuid.UUID
	JobId                     uuid.UUID
	OriginalPerplexity        float64
	QuantizedPerplexity       float64
	QualityLossPercent        float64
	LatencyImprovementPercent float64
	CostSavingsPercent        float64
	ReductionPercent          float64
	CreatedAt                 time.Time
}
