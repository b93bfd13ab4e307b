package service

import (
	"context"
	"encoding/json"
	"sync"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/catalog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MaxIndexAttempts bounds redeliveries of one indexing message
const MaxIndexAttempts = 3

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	catalogService ICatalogService
	logger         logger.ILogger

	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	catalogService ICatalogService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		catalogService: catalogService,
		logger:         log,
		attempts:       make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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
	var payload dto.PublishIndexProductMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // a malformed payload never gets better
		return
	}

	row := RowFromInput(payload.Product)
	if err := row.Validate(); err != nil {
		cs.logger.Error("CONSUMER", "Invalid product payload", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	if _, err := cs.catalogService.IndexProducts(ctx, []catalog.Row{row}); err != nil {
		attempt := cs.recordFailure(msg.UUID)
		if attempt < MaxIndexAttempts {
			cs.logger.Warn("CONSUMER", "Indexing failed, retrying", map[string]interface{}{
				"uniq_id": row.UniqID,
				"attempt": attempt,
				"error":   err.Error(),
			})
			msg.Nack()
			return
		}

		cs.logger.Error("CONSUMER", "Indexing failed, giving up", map[string]interface{}{
			"uniq_id":  row.UniqID,
			"attempts": attempt,
			"error":    err.Error(),
		})
		cs.forget(msg.UUID)
		msg.Ack()
		return
	}

	cs.forget(msg.UUID)
	cs.logger.Info("CONSUMER", "Product indexed", map[string]interface{}{"uniq_id": row.UniqID})
	msg.Ack()
}

func (cs *consumerService) recordFailure(id string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.attempts[id]++
	return cs.attempts[id]
}

func (cs *consumerService) forget(id string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.attempts, id)
}
