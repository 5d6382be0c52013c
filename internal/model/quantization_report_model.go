package model

import (
	"time"

	"github.com/google/uuid"
)

type QuantizationReport struct {
	Id                        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId                     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	OriginalPerplexity        float64   `gorm:"type:decimal(10,4)"`
	QuantizedPerplexity       float64   `gorm:"type:decimal(10,4)"`
	QualityLossPercent        float64   `gorm:"type:decimal(5,2)"`
	LatencyImprovementPercent float64   `gorm:"type:decimal(5,2)"`
	CostSavingsPercent        float64   `gorm:"type:decimal(5,2)"`
	ReductionPercent          float64   `gorm:"type:decimal(5,2)"`
	CreatedAt                 time.Time `gorm:"autoCreateTime"`
}

func (QuantizationReport) TableName() string {
	return "quantization_reports"
}
