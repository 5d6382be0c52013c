// FILE: internal/service/reaper_service.go
package service

import (
	"context"
	"time"

	"quantcloud-be/internal/config"
	"quantcloud-be/internal/pkg/logger"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"
	"quantcloud-be/pkg/events"
	pkgNats "quantcloud-be/pkg/nats"

	"quantcloud-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const reaperLockKey = "quantcloud:reaper:leader"

type IReaperService interface {
	Run(ctx context.Context)
	SweepOnce(ctx context.Context) (int, error)
}

type reaperService struct {
	uowFactory unitofwork.RepositoryFactory
	s3         ObjectStorage
	rdb        *redis.Client
	natsPub    *pkgNats.Publisher
	log        logger.ILogger
	cfg        config.ReaperConfig
	instanceId string
}

func NewReaperService(
	uowFactory unitofwork.RepositoryFactory,
	s3 ObjectStorage,
	rdb *redis.Client,
	natsPub *pkgNats.Publisher,
	log logger.ILogger,
	cfg config.ReaperConfig,
) IReaperService {
	return &reaperService{
		uowFactory: uowFactory,
		s3:         s3,
		rdb:        rdb,
		natsPub:    natsPub,
		log:        log,
		cfg:        cfg,
		instanceId: uuid.NewString(),
	}
}

// acquireLeadership takes the distributed lock so only one instance sweeps
// per interval. Without redis the instance sweeps unconditionally.
func (s *reaperService) acquireLeadership(ctx context.Context) bool {
	if s.rdb == nil {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, reaperLockKey, s.instanceId, s.cfg.LeaderLockTTL).Result()
	if err != nil {
		s.log.Warn("reaper", "Leader lock unavailable, sweeping anyway", map[string]interface{}{"error": err.Error()})
		return true
	}
	return ok
}

func (s *reaperService) releaseLeadership(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	// Only release a lock we still own.
	current, err := s.rdb.Get(ctx, reaperLockKey).Result()
	if err == nil && current == s.instanceId {
		s.rdb.Del(ctx, reaperLockKey)
	}
}

func (s *reaperService) Run(ctx context.Context) {
	s.log.Info("reaper", "Reaper started", map[string]interface{}{
		"interval": s.cfg.Interval.String(),
	})

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reaper", "Reaper stopping", nil)
			return
		case <-ticker.C:
		}

		if !s.acquireLeadership(ctx) {
			continue
		}

		purged, err := s.SweepOnce(ctx)
		if err != nil {
			s.log.Error("reaper", "Sweep failed", map[string]interface{}{"error": err.Error()})
		} else if purged > 0 {
			s.log.Info("reaper", "Sweep finished", map[string]interface{}{"purged": purged})
		}

		s.releaseLeadership(ctx)
	}
}

// SweepOnce purges files past their retention window and revokes expired
// download tokens. Files feeding a pending or processing job are skipped
// until the job settles.
func (s *reaperService) SweepOnce(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Tokens are revoked, not deleted, so the audit trail stays intact.
	revoked, err := uow.DownloadTokenRepository().RevokeExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if revoked > 0 {
		s.log.Info("reaper", "Revoked expired download tokens", map[string]interface{}{"count": revoked})
	}

	expired, err := uow.ModelFileRepository().FindAll(ctx,
		specification.ExpiredBefore{Now: time.Now()},
		specification.Pagination{Limit: 100, Offset: 0},
	)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, file := range expired {
		inFlight, err := s.referencedByActiveJob(ctx, uow, file.Id)
		if err != nil {
			return purged, err
		}
		if inFlight {
			continue
		}

		if err := s.s3.Delete(ctx, file.StoragePath); err != nil {
			s.log.Warn("reaper", "Failed to delete object, keeping record", map[string]interface{}{
				"file_id": file.Id.String(),
				"error":   err.Error(),
			})
			continue
		}
		if err := uow.ModelFileRepository().Delete(ctx, file.Id); err != nil {
			return purged, err
		}

		purged++
		if s.natsPub != nil {
			if err := s.natsPub.Publish(ctx, events.NewFilePurged(file.Id, file.StoragePath)); err != nil {
				s.log.Warn("reaper", "Failed to publish purge event", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return purged, nil
}

func (s *reaperService) referencedByActiveJob(ctx context.Context, uow unitofwork.UnitOfWork, fileId uuid.UUID) (bool, error) {
	for _, status := range []entity.JobStatus{entity.JobStatusPending, entity.JobStatusProcessing} {
		n, err := uow.JobRepository().Count(ctx,
			specification.Filter("input_file_id", fileId),
			specification.ByStatus{Status: status},
		)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
