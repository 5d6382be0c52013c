package implementation

import (
	"context"
	"errors"

	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/mapper"
	"quantcloud-be/internal/model"
	"quantcloud-be/internal/repository/contract"
	"quantcloud-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModelFileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ModelFileMapper
}

func NewModelFileRepository(db *gorm.DB) contract.ModelFileRepository {
	return &ModelFileRepositoryImpl{
		db:     db,
		mapper: mapper.NewModelFileMapper(),
	}
}

func (r *ModelFileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ModelFileRepositoryImpl) Create(ctx context.Context, file *entity.ModelFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *ModelFileRepositoryImpl) Update(ctx context.Context, file *entity.ModelFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *ModelFileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ModelFile{}, id).Error
}

func (r *ModelFileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModelFile, error) {
	var m model.ModelFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ModelFileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModelFile, error) {
	var models []*model.ModelFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ModelFileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ModelFile{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
