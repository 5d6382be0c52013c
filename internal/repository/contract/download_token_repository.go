package contract

import (
	"context"
	"time"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DownloadTokenRepository interface {
	Create(ctx context.Context, token *entity.DownloadToken) error
	Update(ctx context.Context, token *entity.DownloadToken) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DownloadToken, error)
	// Consume marks a token used with a conditional update. Returns false
	// when another request already consumed it, so single-use tokens can
	// never be redeemed twice.
	Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	Revoke(ctx context.Context, id uuid.UUID, now time.Time) error
	// RevokeExpired marks every token past its expiry as revoked, keeping
	// the rows for audit. Re-running against a swept set is a no-op.
	RevokeExpired(ctx context.Context, now time.Time) (int64, error)
}
