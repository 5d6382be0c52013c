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
	"gorm.io/gorm/clause"
)

type JobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobMapper
}

func NewJobRepository(db *gorm.DB) contract.JobRepository {
	return &JobRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobMapper(),
	}
}

func (r *JobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JobRepositoryImpl) Create(ctx context.Context, job *entity.Job) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobRepositoryImpl) Update(ctx context.Context, job *entity.Job) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobRepositoryImpl) UpdateFromStatus(ctx context.Context, job *entity.Job, from entity.JobStatus) (bool, error) {
	m := r.mapper.ToModel(job)
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ? AND status = ?", job.Id, from).
		Select("*").
		Updates(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *JobRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Job{}, id).Error
}

func (r *JobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	var m model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *JobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	var models []*model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JobRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Job{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *JobRepositoryImpl) ClaimPending(ctx context.Context) (*entity.Job, error) {
	var m model.Job
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED", Table: clause.Table{Name: "jobs"}}).
		Joins("JOIN accounts ON accounts.user_id = jobs.user_id").
		Where("jobs.status = ?", entity.JobStatusPending).
		Order("CASE accounts.plan WHEN 'pro' THEN 3 WHEN 'starter' THEN 2 ELSE 1 END DESC").
		Order("jobs.created_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
