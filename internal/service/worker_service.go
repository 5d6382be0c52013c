// FILE: internal/service/worker_service.go
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"quantcloud-be/internal/config"
	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/pkg/logger"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"
	"quantcloud-be/pkg/events"
	pkgNats "quantcloud-be/pkg/nats"
	"quantcloud-be/pkg/quantizer"
	"quantcloud-be/pkg/storage"

	"github.com/google/uuid"
)

type IWorkerService interface {
	Run(ctx context.Context)
	ProcessOne(ctx context.Context) error
}

type workerService struct {
	uowFactory unitofwork.RepositoryFactory
	quant      quantizer.Quantizer
	s3         ObjectStorage
	natsPub    *pkgNats.Publisher
	publisher  IPublisherService
	log        logger.ILogger
	cfg        config.WorkerConfig
	sem        chan struct{}
}

func NewWorkerService(
	uowFactory unitofwork.RepositoryFactory,
	quant quantizer.Quantizer,
	s3 ObjectStorage,
	natsPub *pkgNats.Publisher,
	publisher IPublisherService,
	log logger.ILogger,
	cfg config.WorkerConfig,
) IWorkerService {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	return &workerService{
		uowFactory: uowFactory,
		quant:      quant,
		s3:         s3,
		natsPub:    natsPub,
		publisher:  publisher,
		log:        log,
		cfg:        cfg,
		sem:        make(chan struct{}, cfg.MaxConcurrentJobs),
	}
}

func (s *workerService) publish(ctx context.Context, event events.Event) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.log.Warn("worker", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

// Run polls for claimable jobs until the context is cancelled. Stuck jobs
// are swept on every heartbeat.
func (s *workerService) Run(ctx context.Context) {
	s.log.Info("worker", "Worker started", map[string]interface{}{
		"max_concurrent": s.cfg.MaxConcurrentJobs,
		"poll_interval":  s.cfg.PollInterval.String(),
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("worker", "Worker stopping", nil)
			return
		case <-heartbeat.C:
			s.failStuckJobs(ctx)
		default:
		}

		select {
		case <-ctx.Done():
			return
		case s.sem <- struct{}{}:
		}

		job, err := s.claim(ctx)
		if err != nil || job == nil {
			<-s.sem
			if err != nil {
				s.log.Error("worker", "Claim failed", map[string]interface{}{"error": err.Error()})
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.PollInterval):
			}
			continue
		}

		go func(job *entity.Job) {
			defer func() { <-s.sem }()
			s.process(ctx, job)
		}(job)
	}
}

// ProcessOne claims and processes a single job synchronously. Returns
// ErrNoJobAvailable when the queue is empty.
func (s *workerService) ProcessOne(ctx context.Context) error {
	job, err := s.claim(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		return dto.ErrNoJobAvailable
	}
	s.process(ctx, job)
	return nil
}

// claim moves the best pending job to processing under a SKIP LOCKED row
// lock, so two workers can never take the same job.
func (s *workerService) claim(ctx context.Context) (*entity.Job, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	job, err := uow.JobRepository().ClaimPending(ctx)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	if err := job.Start(time.Now()); err != nil {
		return nil, err
	}
	if err := uow.JobRepository().Update(ctx, job); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewJobStarted(job.Id))
	return job, nil
}

func (s *workerService) process(ctx context.Context, job *entity.Job) {
	s.log.Info("worker", "Processing job", map[string]interface{}{
		"job_id": job.Id.String(),
		"method": string(job.Method),
	})

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	progress := func(percent int) {
		if err := s.reportProgress(ctx, job.Id, percent); err != nil {
			// A terminal status here means the user cancelled; stop the
			// pipeline at the next checkpoint.
			cancel()
		}
	}

	result, err := s.quant.Quantize(runCtx, quantizer.Request{
		JobId:        job.Id,
		Method:       string(job.Method),
		InputFormat:  string(job.InputFormat),
		OutputFormat: string(job.OutputFormat),
		OriginalSize: job.OriginalSize,
	}, progress)

	if err != nil {
		s.handleFailure(ctx, job, err)
		return
	}
	s.complete(ctx, job, result)
}

// reportProgress persists a progress checkpoint. It returns an error when
// the job has reached a terminal state, signalling the pipeline to stop.
// The write is guarded on the stored status, so a cancel committed after
// the read can never be overwritten back to processing.
func (s *workerService) reportProgress(ctx context.Context, jobId uuid.UUID, percent int) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: jobId})
	if err != nil || job == nil {
		return dto.ErrNotFound
	}
	if job.Status.Terminal() {
		return &entity.InvalidTransitionError{From: job.Status, To: entity.JobStatusProcessing}
	}
	if err := job.UpdateProgress(percent, time.Now()); err != nil {
		return err
	}
	ok, err := uow.JobRepository().UpdateFromStatus(ctx, job, entity.JobStatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		return &entity.InvalidTransitionError{From: entity.JobStatusCancelled, To: entity.JobStatusProcessing}
	}
	return nil
}

// sanitizeWorkerError strips anything path-shaped from a worker error so
// storage keys and bucket layouts never surface in job status.
func sanitizeWorkerError(err error) string {
	fields := strings.Fields(err.Error())
	for i, f := range fields {
		if strings.Contains(f, "/") {
			fields[i] = "[redacted]"
		}
	}
	return strings.Join(fields, " ")
}

func outputExtension(format entity.ModelFormat) string {
	switch format {
	case entity.FormatGguf:
		return ".gguf"
	case entity.FormatOnnx:
		return ".onnx"
	case entity.FormatSafetensors:
		return ".safetensors"
	default:
		return ".bin"
	}
}

func (s *workerService) complete(ctx context.Context, job *entity.Job, result *quantizer.Result) {
	outputName := job.Name + outputExtension(job.OutputFormat)
	outputId := uuid.New()
	key := storage.BuildModelKey(job.UserId, outputId, outputName)

	sum := sha256.Sum256(result.Output)
	checksum := hex.EncodeToString(sum[:])

	// The artifact goes to storage before the job is marked completed, so a
	// completed job always has a downloadable output.
	if err := s.s3.Put(ctx, key, result.Output); err != nil {
		s.handleFailure(ctx, job, fmt.Errorf("failed to store output artifact"))
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.log.Error("worker", "Begin failed on completion", map[string]interface{}{"error": err.Error()})
		return
	}
	defer uow.Rollback()

	discard := func(current *entity.Job) {
		// Cancelled while the pipeline was finishing: drop the output.
		if err := s.s3.Delete(ctx, key); err != nil {
			s.log.Warn("worker", "Failed to delete discarded output", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		status := ""
		if current != nil {
			status = string(current.Status)
		}
		s.log.Info("worker", "Job no longer processing, discarding output", map[string]interface{}{
			"job_id": job.Id.String(),
			"status": status,
		})
	}

	now := time.Now()
	current, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: job.Id})
	if err != nil || current == nil {
		discard(nil)
		return
	}
	if current.Status != entity.JobStatusProcessing {
		discard(current)
		return
	}

	account, err := uow.AccountRepository().FindOne(ctx, specification.Filter("user_id", current.UserId))
	if err != nil {
		return
	}
	retention := entity.PlanFree.RetentionDays()
	if account != nil {
		retention = account.Plan.RetentionDays()
	}
	expiry := now.AddDate(0, 0, retention)

	output := &entity.ModelFile{
		Id:               outputId,
		UserId:           current.UserId,
		OriginalFilename: outputName,
		StoragePath:      key,
		FileSize:         int64(len(result.Output)),
		ChecksumSHA256:   checksum,
		Format:           current.OutputFormat,
		ExpiresAt:        &expiry,
		CreatedAt:        now,
	}

	if err := uow.ModelFileRepository().Create(ctx, output); err != nil {
		s.log.Error("worker", "Failed to create output file", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := current.Complete(output.Id, result.QuantizedSize, now); err != nil {
		return
	}
	ok, err := uow.JobRepository().UpdateFromStatus(ctx, current, entity.JobStatusProcessing)
	if err != nil {
		return
	}
	if !ok {
		discard(current)
		return
	}
	if err := uow.Commit(); err != nil {
		s.log.Error("worker", "Commit failed on completion", map[string]interface{}{"error": err.Error()})
		return
	}

	processingTime := 0
	if current.ProcessingTime != nil {
		processingTime = *current.ProcessingTime
	}
	s.publish(ctx, events.NewJobCompleted(current.Id, result.QuantizedSize, processingTime))

	reduction := 0.0
	if current.OriginalSize > 0 {
		reduction = (1 - float64(result.QuantizedSize)/float64(current.OriginalSize)) * 100
	}
	if s.publisher != nil {
		if err := s.publisher.PublishJobCompleted(&dto.JobCompletedMessage{
			JobId:                     current.Id,
			OriginalPerplexity:        result.OriginalPerplexity,
			QuantizedPerplexity:       result.QuantizedPerplexity,
			QualityLossPercent:        result.QualityLossPercent,
			LatencyImprovementPercent: result.LatencyImprovementPercent,
			CostSavingsPercent:        result.CostSavingsPercent,
			ReductionPercent:          reduction,
		}); err != nil {
			s.log.Warn("worker", "Failed to publish completion message", map[string]interface{}{"error": err.Error()})
		}
	}

	s.log.Info("worker", "Job completed", map[string]interface{}{
		"job_id":         current.Id.String(),
		"quantized_size": result.QuantizedSize,
	})
}

func (s *workerService) handleFailure(ctx context.Context, job *entity.Job, cause error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return
	}
	defer uow.Rollback()

	now := time.Now()
	current, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: job.Id})
	if err != nil || current == nil {
		return
	}
	if current.Status != entity.JobStatusProcessing {
		// Already cancelled; the cancel path handled the refund.
		return
	}

	message := sanitizeWorkerError(cause)
	if err := current.Fail(message, now); err != nil {
		return
	}
	ok, err := uow.JobRepository().UpdateFromStatus(ctx, current, entity.JobStatusProcessing)
	if err != nil || !ok {
		// Lost the race to a cancel; that path owns the refund.
		return
	}

	var refundedAccount *entity.Account
	if current.CreditsCharged > 0 {
		account, err := ensureAccountLocked(ctx, uow, current.UserId, now)
		if err != nil {
			return
		}
		refunded, err := refundForJob(ctx, uow, account, current.Id, current.CreditsCharged, "job failed", now)
		if err != nil {
			return
		}
		if refunded {
			refundedAccount = account
		}
	}

	if err := uow.Commit(); err != nil {
		return
	}

	if refundedAccount != nil {
		s.publish(ctx, events.NewCreditsRefund(refundedAccount.Id, current.Id, current.CreditsCharged))
	}
	s.publish(ctx, events.NewJobFailed(current.Id, message))
	s.log.Warn("worker", "Job failed", map[string]interface{}{
		"job_id": current.Id.String(),
		"error":  message,
	})
}

// failStuckJobs fails jobs that have been processing past the stuck
// cutoff, usually after a worker crash. Credits are refunded once.
func (s *workerService) failStuckJobs(ctx context.Context) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cutoff := time.Now().Add(-s.cfg.StuckAfter)
	stuck, err := uow.JobRepository().FindAll(ctx,
		specification.ByStatus{Status: entity.JobStatusProcessing},
		specification.StartedBefore{Cutoff: cutoff},
	)
	if err != nil {
		s.log.Error("worker", "Stuck sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, job := range stuck {
		s.handleFailure(ctx, job, fmt.Errorf("job stuck in processing for more than %s", s.cfg.StuckAfter))
	}
}
