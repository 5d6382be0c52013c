package quantizer

import (
	"context"

	"github.com/google/uuid"
)

// Request describes one quantization run.
type Request struct {
	JobId          uuid.UUID
	Method         string
	InputFormat    string
	OutputFormat   string
	OriginalSize   int64
	ParameterCount *float64
}

// Result carries the produced artifact and the quality measurements that
// feed the job report.
type Result struct {
	Output                    []byte
	QuantizedSize             int64
	OriginalPerplexity        float64
	QuantizedPerplexity       float64
	QualityLossPercent        float64
	LatencyImprovementPercent float64
	CostSavingsPercent        float64
}

// ProgressFunc receives pipeline progress in percent (0-100).
type ProgressFunc func(percent int)

// Quantizer runs the model compression pipeline for a claimed job.
type Quantizer interface {
	Quantize(ctx context.Context, req Request, progress ProgressFunc) (*Result, error)
}
