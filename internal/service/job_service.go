// FILE: internal/service/job_service.go
package service

import (
	"context"
	"log"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"
	pkgNats "quantcloud-be/pkg/nats"

	"quantcloud-be/pkg/events"

	"github.com/google/uuid"
)

type IJobService interface {
	Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitJobRequest) (*dto.JobResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.JobResponse, error)
	List(ctx context.Context, userId uuid.UUID, status string, limit, offset int) ([]*dto.JobResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.JobResponse, error)
	Resubmit(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.ResubmitJobRequest) (*dto.JobResponse, error)
	Stats(ctx context.Context, userId uuid.UUID) (*dto.JobStatsResponse, error)
	GetReport(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.ReportResponse, error)
	EstimateCost(ctx context.Context, userId uuid.UUID, fileId uuid.UUID, method string) (*dto.CostEstimateResponse, error)
	UpdateProgress(ctx context.Context, jobId uuid.UUID, percent int) error
}

type jobService struct {
	uowFactory unitofwork.RepositoryFactory
	natsPub    *pkgNats.Publisher
}

func NewJobService(uowFactory unitofwork.RepositoryFactory, natsPub *pkgNats.Publisher) IJobService {
	return &jobService{
		uowFactory: uowFactory,
		natsPub:    natsPub,
	}
}

func (s *jobService) publish(ctx context.Context, event events.Event) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish %s: %v", event.EventType(), err)
	}
}

// jobCost is base method cost scaled by model size.
func jobCost(method entity.QuantizationMethod, file *entity.ModelFile) int {
	return method.BaseCost() * file.SizeFactor()
}

func (s *jobService) Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitJobRequest) (*dto.JobResponse, error) {
	return s.submit(ctx, userId, req, nil)
}

func (s *jobService) submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitJobRequest, retryOf *uuid.UUID) (*dto.JobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	fileId, err := uuid.Parse(req.InputFileId)
	if err != nil {
		return nil, dto.ErrNotFound
	}

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: fileId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if file == nil || file.Expired(time.Now()) {
		return nil, dto.ErrNotFound
	}

	method := entity.QuantizationMethod(req.Method)
	outputFormat := entity.ModelFormat(req.OutputFormat)
	if !method.Compatible(file.Format, outputFormat) {
		return nil, &dto.InvalidCombinationError{
			Method:       method,
			InputFormat:  file.Format,
			OutputFormat: outputFormat,
		}
	}

	cost := jobCost(method, file)
	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	account, err := ensureAccountLocked(ctx, uow, userId, now)
	if err != nil {
		return nil, err
	}
	if err := resetCycleIfElapsed(ctx, uow, account, now); err != nil {
		return nil, err
	}

	// Checked before the job row exists, so a rejected submission leaves
	// nothing behind.
	if !account.CanAfford(cost) {
		return nil, &dto.InsufficientCreditError{
			Required:  cost,
			Available: account.Balance(),
		}
	}

	job := &entity.Job{
		Id:             uuid.New(),
		UserId:         userId,
		Name:           req.Name,
		Status:         entity.JobStatusPending,
		Progress:       0,
		Method:         method,
		InputFormat:    file.Format,
		OutputFormat:   outputFormat,
		InputFileId:    file.Id,
		OriginalSize:   file.FileSize,
		CreditsCharged: cost,
		RetryOfJobId:   retryOf,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uow.JobRepository().Create(ctx, job); err != nil {
		return nil, err
	}

	if err := debitForJob(ctx, uow, account, job.Id, cost, now); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewJobSubmitted(job.Id, userId, req.Method, cost))
	return dto.NewJobResponse(job), nil
}

func (s *jobService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.JobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.JobRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, dto.ErrNotFound
	}
	return dto.NewJobResponse(job), nil
}

func (s *jobService) List(ctx context.Context, userId uuid.UUID, status string, limit, offset int) ([]*dto.JobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: entity.JobStatus(status)})
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})

	jobs, err := uow.JobRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, dto.NewJobResponse(j))
	}
	return result, nil
}

func (s *jobService) Cancel(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.JobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	job, err := uow.JobRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, dto.ErrNotFound
	}

	now := time.Now()
	prev := job.Status
	if err := job.Cancel(now); err != nil {
		return nil, err
	}
	// Guarded on the status we read: a worker finishing the job in the
	// meantime wins, and the cancel reports the conflict.
	ok, err := uow.JobRepository().UpdateFromStatus(ctx, job, prev)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		from := prev
		if current != nil {
			from = current.Status
		}
		return nil, &entity.InvalidTransitionError{From: from, To: entity.JobStatusCancelled}
	}

	refunded := false
	if job.CreditsCharged > 0 {
		account, err := ensureAccountLocked(ctx, uow, userId, now)
		if err != nil {
			return nil, err
		}
		refunded, err = refundForJob(ctx, uow, account, job.Id, job.CreditsCharged, "job cancelled", now)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewJobCancelled(job.Id, refunded))
	return dto.NewJobResponse(job), nil
}

func (s *jobService) Resubmit(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.ResubmitJobRequest) (*dto.JobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	original, err := uow.JobRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, dto.ErrNotFound
	}
	if original.Status != entity.JobStatusFailed {
		return nil, &entity.InvalidTransitionError{From: original.Status, To: entity.JobStatusPending}
	}

	name := original.Name
	if req != nil && req.Name != "" {
		name = req.Name
	}

	// The retry link rides inside the submit transaction.
	return s.submit(ctx, userId, &dto.SubmitJobRequest{
		Name:         name,
		InputFileId:  original.InputFileId.String(),
		Method:       string(original.Method),
		OutputFormat: string(original.OutputFormat),
	}, &original.Id)
}

func (s *jobService) Stats(ctx context.Context, userId uuid.UUID) (*dto.JobStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.JobRepository()

	stats := &dto.JobStatsResponse{}
	var err error
	if stats.Total, err = repo.Count(ctx, specification.OwnedBy{UserID: userId}); err != nil {
		return nil, err
	}

	counts := map[entity.JobStatus]*int64{
		entity.JobStatusPending:    &stats.Pending,
		entity.JobStatusProcessing: &stats.Processing,
		entity.JobStatusCompleted:  &stats.Completed,
		entity.JobStatusFailed:     &stats.Failed,
		entity.JobStatusCancelled:  &stats.Cancelled,
	}
	for status, target := range counts {
		n, err := repo.Count(ctx,
			specification.OwnedBy{UserID: userId},
			specification.ByStatus{Status: status},
		)
		if err != nil {
			return nil, err
		}
		*target = n
	}
	return stats, nil
}

func (s *jobService) GetReport(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.ReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.JobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, dto.ErrNotFound
	}

	report, err := uow.QuantizationReportRepository().FindOne(ctx, specification.Filter("job_id", jobId))
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, dto.ErrNotFound
	}

	return &dto.ReportResponse{
		JobId:                     report.JobId,
		OriginalPerplexity:        report.OriginalPerplexity,
		QuantizedPerplexity:       report.QuantizedPerplexity,
		QualityLossPercent:        report.QualityLossPercent,
		LatencyImprovementPercent: report.LatencyImprovementPercent,
		CostSavingsPercent:        report.CostSavingsPercent,
		ReductionPercent:          report.ReductionPercent,
		CreatedAt:                 report.CreatedAt,
	}, nil
}

func (s *jobService) EstimateCost(ctx context.Context, userId uuid.UUID, fileId uuid.UUID, method string) (*dto.CostEstimateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: fileId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, dto.ErrNotFound
	}

	m := entity.QuantizationMethod(method)
	return &dto.CostEstimateResponse{
		Method:         method,
		BaseCost:       m.BaseCost(),
		SizeMultiplier: file.SizeFactor(),
		TotalCost:      jobCost(m, file),
	}, nil
}

func (s *jobService) UpdateProgress(ctx context.Context, jobId uuid.UUID, percent int) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: jobId})
	if err != nil {
		return err
	}
	if job == nil {
		return dto.ErrNotFound
	}

	if job.Status.Terminal() {
		// Late report against a finished job, nothing to persist.
		return nil
	}
	if err := job.UpdateProgress(percent, time.Now()); err != nil {
		return err
	}
	ok, err := uow.JobRepository().UpdateFromStatus(ctx, job, entity.JobStatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		current, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: jobId})
		if err != nil {
			return err
		}
		if current != nil && current.Status.Terminal() {
			return nil
		}
		from := job.Status
		if current != nil {
			from = current.Status
		}
		return &entity.InvalidTransitionError{From: from, To: entity.JobStatusProcessing}
	}
	return nil
}
