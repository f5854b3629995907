package event

import (
	"context"
	"log/slog"
)

const TopicProductRegistered = "product.registered"

type ProductRegisteredEvent struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	// QuantityAdded is the quantity submitted with the registration, which
	// on re-registration of a known name is an increment, not the total.
	QuantityAdded int `json:"quantity_added"`
}

func (s *Service) handleProductRegisteredEvent(ctx context.Context, ev ProductRegisteredEvent) error {
	s.logger.InfoContext(ctx, "handling product registered event", slog.Any("event", ev))
	return nil
}
