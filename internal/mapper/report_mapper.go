package mapper

import (
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/model"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

func (m *ReportMapper) ToEntity(r *model.QuantizationReport) *entity.QuantizationReport {
	if r == nil {
		return nil
	}
	return &entity.QuantizationReport{
		Id:                        r.Id,
		JobId:                     r.JobId,
		OriginalPerplexity:        r.OriginalPerplexity,
		QuantizedPerplexity:       r.QuantizedPerplexity,
		QualityLossPercent:        r.QualityLossPercent,
		LatencyImprovementPercent: r.LatencyImprovementPercent,
		CostSavingsPercent:        r.CostSavingsPercent,
		ReductionPercent:          r.ReductionPercent,
		CreatedAt:                 r.CreatedAt,
	}
}

func (m *ReportMapper) ToModel(r *entity.QuantizationReport) *model.QuantizationReport {
	if r == nil {
		return nil
	}
	return &model.QuantizationReport{
		Id:                        r.Id,
		JobId:                     r.JobId,
		OriginalPerplexity:        r.OriginalPerplexity,
		QuantizedPerplexity:       r.QuantizedPerplexity,
		QualityLossPercent:        r.QualityLossPercent,
		LatencyImprovementPercent: r.LatencyImprovementPercent,
		CostSavingsPercent:        r.CostSavingsPercent,
		ReductionPercent:          r.ReductionPercent,
		CreatedAt:                 r.CreatedAt,
	}
}
