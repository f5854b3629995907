package event

import (
	"context"
	"log/slog"
)

const TopicStockUpdated = "stock.updated"

type StockUpdatedEvent struct {
	OrderID int64              `json:"order_id"`
	Items   []StockUpdatedItem `json:"items"`
}

type StockUpdatedItem struct {
	ProductID int64 `json:"product_id"`
	// Quantity is the amount consumed from stock for this line item.
	Quantity int `json:"quantity"`
}

func (s *Service) handleStockUpdatedEvent(ctx context.Context, ev StockUpdatedEvent) error {
	s.logger.InfoContext(ctx, "handling stock updated event",
		slog.Int64("order_id", ev.OrderID),
		slog.Int("items", len(ev.Items)),
	)
	return nil
}
