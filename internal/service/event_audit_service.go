package service

import (
	"context"

	"quantcloud-be/internal/pkg/logger"
	"quantcloud-be/pkg/events"
	pkgNats "quantcloud-be/pkg/nats"
)

// IEventAuditService mirrors every published domain event into the
// structured log, giving operators a queryable trail without reading
// the stream directly.
type IEventAuditService interface {
	Start() error
}

type eventAuditService struct {
	sub *pkgNats.Subscriber
	log logger.ILogger
}

func NewEventAuditService(sub *pkgNats.Subscriber, log logger.ILogger) IEventAuditService {
	return &eventAuditService{
		sub: sub,
		log: log,
	}
}

func (s *eventAuditService) Start() error {
	return s.sub.Subscribe("quant.>", "event-audit", func(ctx context.Context, event events.Event) error {
		s.log.Info("audit", "Domain event", map[string]interface{}{
			"type": event.EventType(),
			"data": event.Payload(),
		})
		return nil
	})
}
