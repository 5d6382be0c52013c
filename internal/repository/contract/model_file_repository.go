package contract

import (
	"context"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ModelFileRepository interface {
	Create(ctx context.Context, file *entity.ModelFile) error
	Update(ctx context.Context, file *entity.ModelFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModelFile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModelFile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
