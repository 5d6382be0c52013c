package contract

import (
	"context"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
)

type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LedgerEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
