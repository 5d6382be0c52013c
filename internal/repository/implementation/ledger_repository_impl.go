package implementation

import (
	"context"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/mapper"
	"quantcloud-be/internal/model"
	"quantcloud-be/internal/repository/contract"
	"quantcloud-be/internal/repository/specification"

	"gorm.io/gorm"
)

type LedgerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LedgerMapper
}

func NewLedgerRepository(db *gorm.DB) contract.LedgerRepository {
	return &LedgerRepositoryImpl{
		db:     db,
		mapper: mapper.NewLedgerMapper(),
	}
}

func (r *LedgerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LedgerRepositoryImpl) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *LedgerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LedgerEntry, error) {
	var models []*model.LedgerEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *LedgerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LedgerEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
