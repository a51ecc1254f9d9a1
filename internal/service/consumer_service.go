package service

import (
	"context"
	"encoding/json"

	"ai-chat-be/internal/model"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the turn-completed topic into the audit log table.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	systemLogRepo contract.SystemLogRepository
	log           logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	systemLogRepo contract.SystemLogRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		systemLogRepo: systemLogRepo,
		log:           log,
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
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.log.Error("CONSUMER", "Failed to unmarshal event payload", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads never become valid, no point retrying
		return
	}

	details := string(msg.Payload)
	entry := &model.SystemLog{
		Level:   "INFO",
		Module:  strPtr("CHAT"),
		Message: envelope.Type,
		Details: &details,
	}

	if err := cs.systemLogRepo.Create(ctx, entry); err != nil {
		cs.log.Error("CONSUMER", "Failed to persist audit entry", map[string]interface{}{
			"event_type": envelope.Type,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}

func strPtr(s string) *string {
	return &s
}
