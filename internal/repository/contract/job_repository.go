package contract

import (
	"context"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"

	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	Update(ctx context.Context, job *entity.Job) error
	// UpdateFromStatus persists the job only if its stored status still
	// matches from, so a terminal transition committed by a racing writer
	// is never overwritten. Returns false when the guard rejected it.
	UpdateFromStatus(ctx context.Context, job *entity.Job, from entity.JobStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ClaimPending locks the highest-priority pending job with SKIP LOCKED
	// so concurrent workers never pick the same one. Returns nil when the
	// queue is empty. Must run inside a transaction.
	ClaimPending(ctx context.Context) (*entity.Job, error)
}
