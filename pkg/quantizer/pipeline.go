package quantizer

import (
	"context"
	"fmt"
	"time"

	"quantcloud-be/internal/pkg/logger"
)

// stage is one step of the simulated pipeline with the progress value
// reported once it finishes.
type stage struct {
	name     string
	progress int
}

var stages = []stage{
	{"load_model", 20},
	{"calibrate", 35},
	{"quantize_weights", 55},
	{"pack_output", 75},
	{"validate", 90},
}

// PipelineQuantizer emulates the Python quantization toolchain. Sizes and
// quality numbers follow the published characteristics of each method; the
// per-stage delay stands in for real compute and is zero in tests.
type PipelineQuantizer struct {
	stageDelay time.Duration
	log        logger.ILogger
}

func NewPipelineQuantizer(stageDelay time.Duration, log logger.ILogger) *PipelineQuantizer {
	return &PipelineQuantizer{
		stageDelay: stageDelay,
		log:        log,
	}
}

// sizeRatio is the expected output/input size for each method, relative to
// fp16 weights.
func sizeRatio(method string) (float64, error) {
	switch method {
	case "int8":
		return 0.50, nil
	case "gptq", "awq":
		return 0.25, nil
	case "gguf_q4_0":
		return 0.28, nil
	case "gguf_q5_0":
		return 0.34, nil
	default:
		return 0, fmt.Errorf("unsupported quantization method: %s", method)
	}
}

func costSavings(method string) float64 {
	if method == "int8" {
		return 40.0
	}
	return 70.0
}

func (q *PipelineQuantizer) Quantize(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	ratio, err := sizeRatio(req.Method)
	if err != nil {
		return nil, err
	}

	for _, s := range stages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.stageDelay):
		}

		q.log.Debug("quantizer", "Stage complete", map[string]interface{}{
			"job_id": req.JobId.String(),
			"stage":  s.name,
		})

		if progress != nil {
			progress(s.progress)
		}
	}

	quantizedSize := int64(float64(req.OriginalSize) * ratio)
	if quantizedSize < 1 {
		quantizedSize = 1
	}

	// Deterministic stand-in bytes for the packed weights.
	output := make([]byte, quantizedSize)
	seed := req.JobId[:]
	for i := range output {
		output[i] = seed[i%len(seed)]
	}

	return &Result{
		Output:                    output,
		QuantizedSize:             quantizedSize,
		OriginalPerplexity:        15.8,
		QuantizedPerplexity:       16.2,
		QualityLossPercent:        0.8,
		LatencyImprovementPercent: 65.0,
		CostSavingsPercent:        costSavings(req.Method),
	}, nil
}
