package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/repository/specification"
	"sheetroom-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IConsumerService drains the change bus into the change_history table.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.CellChangeMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal change message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// The worksheet may be gone by the time the message is processed; a
	// history row for a deleted worksheet would just violate the FK.
	worksheet, err := uow.WorksheetRepository().FindOne(ctx, specification.ByID{ID: payload.WorksheetId})
	if err != nil {
		log.Printf("[ERROR] Failed to get worksheet %s: %v", payload.WorksheetId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if worksheet == nil {
		msg.Ack() // Worksheet deleted? Ack.
		return
	}

	entry := &entity.ChangeEntry{
		Id:          uuid.New(),
		WorksheetId: payload.WorksheetId,
		RowIndex:    payload.RowIndex,
		ColIndex:    payload.ColIndex,
		OldValue:    payload.OldValue,
		NewValue:    payload.NewValue,
		UserId:      payload.UserId,
		ChangedAt:   time.Now(),
	}
	if err := uow.ChangeHistoryRepository().Append(ctx, entry); err != nil {
		log.Printf("[ERROR] Failed to append change history: %v", err)
		msg.Nack()
		return
	}

	msg.Ack()
}
