// FILE: internal/service/file_service.go
package service

import (
	"context"
	"strings"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"
	"quantcloud-be/pkg/storage"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IFileService interface {
	Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterFileRequest) (*dto.RegisterFileResponse, error)
	Finalize(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.FinalizeFileRequest) (*dto.FileResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.FileResponse, error)
	List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.FileResponse, error)
	MarkExpiring(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.MarkExpiringRequest) (*dto.FileResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type fileService struct {
	uowFactory    unitofwork.RepositoryFactory
	s3            ObjectStorage
	metadataCache *gocache.Cache
	uploadExpiry  time.Duration
}

func NewFileService(uowFactory unitofwork.RepositoryFactory, s3 ObjectStorage, uploadExpiry time.Duration) IFileService {
	return &fileService{
		uowFactory:    uowFactory,
		s3:            s3,
		metadataCache: gocache.New(5*time.Minute, 10*time.Minute),
		uploadExpiry:  uploadExpiry,
	}
}

func (s *fileService) Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterFileRequest) (*dto.RegisterFileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	file := &entity.ModelFile{
		Id:               uuid.New(),
		UserId:           userId,
		OriginalFilename: req.Filename,
		StorageBucket:    s.s3.Bucket(),
		ChecksumSHA256:   strings.ToLower(req.Checksum),
		Format:           entity.ModelFormat(req.Format),
		ModelType:        req.ModelType,
		Architecture:     req.Architecture,
		ParameterCount:   req.ParameterCount,
		CreatedAt:        now,
	}
	file.StoragePath = storage.BuildModelKey(userId, file.Id, req.Filename)

	if err := uow.ModelFileRepository().Create(ctx, file); err != nil {
		return nil, err
	}

	// The upload URL is checksum-bound: S3 rejects content whose SHA-256
	// differs from the declared digest.
	uploadUrl, err := s.s3.PresignPut(ctx, file.StoragePath, file.ChecksumSHA256, s.uploadExpiry)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterFileResponse{
		File:      dto.NewFileResponse(file),
		UploadUrl: uploadUrl,
	}, nil
}

// Finalize confirms the upload landed intact. The stored object's digest
// is read back from S3 and compared to the declared one; a mismatch
// removes both the object and the record, the file never becomes usable.
func (s *fileService) Finalize(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.FinalizeFileRequest) (*dto.FileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, dto.ErrNotFound
	}

	reject := func(actual string) (*dto.FileResponse, error) {
		_ = s.s3.Delete(ctx, file.StoragePath)
		if err := uow.ModelFileRepository().Delete(ctx, file.Id); err != nil {
			return nil, err
		}
		return nil, &dto.IntegrityError{Expected: file.ChecksumSHA256, Actual: actual}
	}

	if actual := strings.ToLower(req.Checksum); actual != file.ChecksumSHA256 {
		return reject(actual)
	}

	exists, err := s.s3.Exists(ctx, file.StoragePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dto.ErrNotFound
	}

	stored, err := s.s3.ChecksumSHA256(ctx, file.StoragePath)
	if err != nil {
		return nil, err
	}
	if stored != file.ChecksumSHA256 {
		return reject(stored)
	}

	size, err := s.s3.ObjectSize(ctx, file.StoragePath)
	if err != nil {
		return nil, err
	}
	file.FileSize = size

	// Retention runs from the finalize time, per the owner's plan.
	account, err := uow.AccountRepository().FindOne(ctx, specification.Filter("user_id", userId))
	if err != nil {
		return nil, err
	}
	retention := entity.PlanFree.RetentionDays()
	if account != nil {
		retention = account.Plan.RetentionDays()
	}
	expiry := time.Now().AddDate(0, 0, retention)
	file.ExpiresAt = &expiry

	if err := uow.ModelFileRepository().Update(ctx, file); err != nil {
		return nil, err
	}

	s.metadataCache.Delete(file.Id.String())
	return dto.NewFileResponse(file), nil
}

func (s *fileService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.FileResponse, error) {
	if cached, ok := s.metadataCache.Get(id.String()); ok {
		file := cached.(*entity.ModelFile)
		if file.UserId == userId {
			return dto.NewFileResponse(file), nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, dto.ErrNotFound
	}

	s.metadataCache.Set(file.Id.String(), file, gocache.DefaultExpiration)
	return dto.NewFileResponse(file), nil
}

func (s *fileService) List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.FileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	files, err := uow.ModelFileRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.FileResponse, 0, len(files))
	for _, f := range files {
		result = append(result, dto.NewFileResponse(f))
	}
	return result, nil
}

// MarkExpiring sets or shortens a file's expiry. The owner's plan
// retention window caps how far out the expiry can move.
func (s *fileService) MarkExpiring(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.MarkExpiringRequest) (*dto.FileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, dto.ErrNotFound
	}

	account, err := uow.AccountRepository().FindOne(ctx, specification.Filter("user_id", userId))
	if err != nil {
		return nil, err
	}
	retention := entity.PlanFree.RetentionDays()
	if account != nil {
		retention = account.Plan.RetentionDays()
	}

	now := time.Now()
	expiry := now.Add(time.Duration(req.TTLHours) * time.Hour)
	if limit := now.AddDate(0, 0, retention); expiry.After(limit) {
		expiry = limit
	}
	file.ExpiresAt = &expiry

	if err := uow.ModelFileRepository().Update(ctx, file); err != nil {
		return nil, err
	}

	s.metadataCache.Delete(file.Id.String())
	return dto.NewFileResponse(file), nil
}

func (s *fileService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if file == nil {
		return dto.ErrNotFound
	}

	// A file feeding a live job cannot be removed.
	for _, status := range []entity.JobStatus{entity.JobStatusPending, entity.JobStatusProcessing} {
		n, err := uow.JobRepository().Count(ctx,
			specification.Filter("input_file_id", file.Id),
			specification.ByStatus{Status: status},
		)
		if err != nil {
			return err
		}
		if n > 0 {
			return dto.ErrForbidden
		}
	}

	if err := s.s3.Delete(ctx, file.StoragePath); err != nil {
		return err
	}
	if err := uow.ModelFileRepository().Delete(ctx, file.Id); err != nil {
		return err
	}

	s.metadataCache.Delete(file.Id.String())
	return nil
}
