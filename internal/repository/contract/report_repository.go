package contract

import (
	"context"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
)

type QuantizationReportRepository interface {
	Create(ctx context.Context, report *entity.QuantizationReport) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuantizationReport, error)
}
