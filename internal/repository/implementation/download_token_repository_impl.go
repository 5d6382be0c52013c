package implementation

import (
	"context"
	"errors"
	"time"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/mapper"
	"quantcloud-be/internal/model"
	"quantcloud-be/internal/repository/contract"
	"quantcloud-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DownloadTokenRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DownloadTokenMapper
}

func NewDownloadTokenRepository(db *gorm.DB) contract.DownloadTokenRepository {
	return &DownloadTokenRepositoryImpl{
		db:     db,
		mapper: mapper.NewDownloadTokenMapper(),
	}
}

func (r *DownloadTokenRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DownloadTokenRepositoryImpl) Create(ctx context.Context, token *entity.DownloadToken) error {
	m := r.mapper.ToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.ToEntity(m)
	return nil
}

func (r *DownloadTokenRepositoryImpl) Update(ctx context.Context, token *entity.DownloadToken) error {
	m := r.mapper.ToModel(token)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.ToEntity(m)
	return nil
}

func (r *DownloadTokenRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DownloadToken, error) {
	var m model.DownloadToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// Consume relies on the WHERE clause to reject already-consumed tokens, so
// two racing redemptions resolve to exactly one winner.
func (r *DownloadTokenRepositoryImpl) Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.DownloadToken{}).
		Where("id = ? AND consumed_at IS NULL AND revoked_at IS NULL", id).
		Update("consumed_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DownloadTokenRepositoryImpl) Revoke(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.DownloadToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now).Error
}

func (r *DownloadTokenRepositoryImpl) RevokeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.DownloadToken{}).
		Where("expires_at < ? AND revoked_at IS NULL", now).
		Update("revoked_at", now)
	return result.RowsAffected, result.Error
}
