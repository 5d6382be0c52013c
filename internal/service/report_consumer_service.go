// FILE: internal/service/report_consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IReportConsumerService interface {
	Consume(ctx context.Context) error
}

type reportConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewReportConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IReportConsumerService {
	return &reportConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *reportConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *reportConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.JobCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal completion message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Re-delivery after a crash must not duplicate the report; job_id is
	// unique on the table.
	existing, err := uow.QuantizationReportRepository().FindOne(ctx, specification.Filter("job_id", payload.JobId))
	if err != nil {
		log.Printf("[ERROR] Failed to check existing report for job %s: %v", payload.JobId, err)
		msg.Nack()
		return
	}
	if existing != nil {
		msg.Ack()
		return
	}

	report := &entity.QuantizationReport{
		Id:                        uuid.New(),
		JobId:                     payload.JobId,
		OriginalPerplexity:        payload.OriginalPerplexity,
		QuantizedPerplexity:       payload.QuantizedPerplexity,
		QualityLossPercent:        payload.QualityLossPercent,
		LatencyImprovementPercent: payload.LatencyImprovementPercent,
		CostSavingsPercent:        payload.CostSavingsPercent,
		ReductionPercent:          payload.ReductionPercent,
		CreatedAt:                 time.Now(),
	}
	if err := uow.QuantizationReportRepository().Create(ctx, report); err != nil {
		log.Printf("[ERROR] Failed to save report for job %s: %v", payload.JobId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Report saved for job %s", payload.JobId)
	msg.Ack()
}
