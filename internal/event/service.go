package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/estoque-api/internal/storage/mq"
)

// Service consumes the domain events published through the outbox relay.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		TopicProductRegistered,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev ProductRegisteredEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal product registered event: %w", err)
			}

			if err := s.handleProductRegisteredEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle product registered event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register product registered event handler: %w", err)
	}

	if err := s.mqConsumer.RegisterHandler(
		TopicStockUpdated,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev StockUpdatedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal stock updated event: %w", err)
			}

			if err := s.handleStockUpdatedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle stock updated event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register stock updated event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}
