package contract

import (
	"context"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Update(ctx context.Context, account *entity.Account) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error)
	// FindOneByUserIdForUpdate locks the account row for the duration of the
	// surrounding transaction. Every balance mutation goes through this lock.
	FindOneByUserIdForUpdate(ctx context.Context, userId uuid.UUID) (*entity.Account, error)
}
