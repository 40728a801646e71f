package event

import (
	"context"
	"log/slog"
)

const TopicOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID      string  `json:"order_id"`
	ClientName   string  `json:"client_name"`
	Total        float64 `json:"total"`
	ProductCount int     `json:"product_count"`
}

func (s *Service) handleOrderCreatedEvent(ctx context.Context, ev OrderCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling order created event", slog.Any("event", ev))
	return nil
}
