// FILE: internal/service/publisher_service.go
package service

import (
	"encoding/json"

	"quantcloud-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishJobCompleted(msg *dto.JobCompletedMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) PublishJobCompleted(msg *dto.JobCompletedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.pubSub.Publish(p.topicName, message.NewMessage(watermill.NewUUID(), payload))
}
