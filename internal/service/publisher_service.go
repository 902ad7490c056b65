package service

import (
	"context"
	"encoding/json"

	"sheetroom-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService feeds cell changes to the in-process change bus. The
// history consumer on the other end turns them into change_history rows.
type IPublisherService interface {
	PublishCellChange(ctx context.Context, change *dto.CellChangeMessage) error
}

type publisherService struct {
	pubSub    message.Publisher
	topicName string
}

func NewPublisherService(pubSub message.Publisher, topicName string) IPublisherService {
	return &publisherService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (p *publisherService) PublishCellChange(ctx context.Context, change *dto.CellChangeMessage) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}
