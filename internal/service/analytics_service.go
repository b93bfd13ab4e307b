package service

import (
	"context"

	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/events"
	pktNats "voice-shopping-be/pkg/nats"
)

const analyticsDurable = "shopping-analytics"

// EventSubscriber is satisfied by the JetStream subscriber
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType string, durableName string, handler pktNats.EventHandler) error
}

type TaskObserver interface {
	ObserveTask(task, strategy string)
}

type IAnalyticsService interface {
	Start(ctx context.Context, subscriber EventSubscriber) error
	Handle(ctx context.Context, event events.Event) error
}

// analyticsService turns QUERY_ANSWERED events into per-task counters
type analyticsService struct {
	observer TaskObserver
	logger   logger.ILogger
}

func NewAnalyticsService(observer TaskObserver, log logger.ILogger) IAnalyticsService {
	return &analyticsService{observer: observer, logger: log}
}

func (s *analyticsService) Start(ctx context.Context, subscriber EventSubscriber) error {
	return subscriber.Subscribe(ctx, events.TypeQueryAnswered, analyticsDurable, s.Handle)
}

func (s *analyticsService) Handle(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeQueryAnswered {
		return nil
	}

	payload := event.Payload()
	task, _ := payload["task"].(string)
	strategy, _ := payload["strategy"].(string)
	if task == "" {
		task = "unknown"
	}
	if strategy == "" {
		strategy = "unknown"
	}

	s.observer.ObserveTask(task, strategy)
	s.logger.Debug("ANALYTICS", "Query event recorded", map[string]interface{}{
		"task":        task,
		"strategy":    strategy,
		"channel":     payload["channel"],
		"elapsed_ms":  payload["elapsed_ms"],
		"occurred_at": event.Timestamp(),
	})
	return nil
}
