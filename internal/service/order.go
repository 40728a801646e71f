package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lmdl25/kenility-challenge/internal/apperr"
	"github.com/lmdl25/kenility-challenge/internal/event"
	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/repository"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
	"github.com/lmdl25/kenility-challenge/pkg/outbox"
	"github.com/lmdl25/kenility-challenge/pkg/ptr"
)

// OrderItemParams is a requested order line: a product reference and a
// quantity. The price is resolved from the catalog, never supplied.
type OrderItemParams struct {
	ProductID string
	Quantity  int
}

type CreateOrderParams struct {
	ClientName string
	Items      []OrderItemParams
}

// UpdateOrderParams is a partial patch. A nil Items means "leave the list
// alone"; a non-nil Items wholesale-replaces it and recomputes the total.
type UpdateOrderParams struct {
	ClientName *string
	Items      *[]OrderItemParams
}

// MonthlyTotal is the aggregate for the previous calendar month. EndDate is
// one millisecond before the start of the current month, so the window is
// inclusive at both ends for millisecond-resolution timestamps.
type MonthlyTotal struct {
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	TotalAmount float64   `json:"totalAmount"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (model.Order, error)
	UpdateOrder(ctx context.Context, id string, params UpdateOrderParams) (model.Order, error)
	TotalForLastCalendarMonth(ctx context.Context) (MonthlyTotal, error)
	HighestAmountOrder(ctx context.Context) (model.Order, error)
}

type orderService struct {
	db            db.DB
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository

	// now is the wall clock, injected so the calendar-month window is
	// testable.
	now func() time.Time
}

func NewOrderService(
	db db.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) OrderService {
	return &orderService{
		db:            db,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		now:           time.Now,
	}
}

// CreateOrder resolves every requested line against the catalog, freezes the
// product prices into the order and persists it together with an
// order.created outbox message. Orders are historical records of what was
// charged: later catalog price changes never touch them.
func (s *orderService) CreateOrder(ctx context.Context, params CreateOrderParams) (model.Order, error) {
	if len(params.Items) == 0 {
		return model.Order{}, apperr.OrderProductListEmpty
	}

	productList, total, err := s.resolveProductList(ctx, params.Items)
	if err != nil {
		return model.Order{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Order{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := s.now()
	order := model.Order{
		ID:          id,
		ClientName:  params.ClientName,
		ProductList: productList,
		Total:       total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ev := event.OrderCreatedEvent{
		OrderID:      order.ID.String(),
		ClientName:   order.ClientName,
		Total:        order.Total,
		ProductCount: len(order.ProductList),
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Order{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.orderRepo.
			WithDB(db).
			CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("order repository create order: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicOrderCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(order.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Order{}, apperr.OrderCreateFailed.WrapParent(err)
	}

	return order, nil
}

// UpdateOrder applies a partial patch. A supplied item list re-runs the exact
// same resolution as CreateOrder and replaces the prior list and total as a
// whole; item-level corrections are not supported.
func (s *orderService) UpdateOrder(ctx context.Context, id string, params UpdateOrderParams) (model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return model.Order{}, apperr.NewInvalidOrderID(id)
	}

	var patch repository.UpdateOrderParams

	if params.ClientName != nil {
		patch.ClientName = params.ClientName
	}

	if params.Items != nil {
		if len(*params.Items) == 0 {
			return model.Order{}, apperr.OrderProductListEmpty
		}

		productList, total, err := s.resolveProductList(ctx, *params.Items)
		if err != nil {
			return model.Order{}, err
		}

		patch.ProductList = productList
		patch.Total = &total
	}

	if patch.ClientName == nil && patch.ProductList == nil {
		return model.Order{}, apperr.OrderNoFieldsToUpdate
	}

	order, err := s.orderRepo.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Order{}, apperr.NewOrderNotFound(id)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsDataException(pgErr.Code) {
			return model.Order{}, apperr.NewOrderUpdateInvalid(pgErr.Message)
		}

		return model.Order{}, apperr.OrderUpdateFailed.WrapParent(err)
	}

	return order, nil
}

// TotalForLastCalendarMonth sums the totals of all orders created in the
// previous calendar month, UTC. Run in April, it covers all of March.
func (s *orderService) TotalForLastCalendarMonth(ctx context.Context) (MonthlyTotal, error) {
	now := s.now().UTC()

	startDate := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		Add(-time.Millisecond)

	totalAmount, err := s.orderRepo.SumOrderTotalsCreatedBetween(ctx, startDate, endDate)
	if err != nil {
		return MonthlyTotal{}, apperr.OrderStatsFailed.WrapParent(err)
	}

	return MonthlyTotal{
		StartDate:   startDate,
		EndDate:     endDate,
		TotalAmount: totalAmount,
	}, nil
}

// HighestAmountOrder returns the order with the maximum total. An empty
// order table is reported as a typed not-found error, which the HTTP layer
// maps to 404.
func (s *orderService) HighestAmountOrder(ctx context.Context) (model.Order, error) {
	order, err := s.orderRepo.FindHighestTotalOrder(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Order{}, apperr.NoOrdersFound
		}
		return model.Order{}, apperr.OrderStatsFailed.WrapParent(err)
	}

	return order, nil
}

// resolveProductList validates each requested line in input order and
// snapshots the current product price into it. Any failure aborts the whole
// resolution before anything is written.
func (s *orderService) resolveProductList(ctx context.Context, items []OrderItemParams) ([]model.OrderProductItem, float64, error) {
	productList := make([]model.OrderProductItem, 0, len(items))
	var total float64

	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, 0, apperr.NewInvalidProductID(item.ProductID)
		}

		product, err := s.productRepo.FindProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, 0, apperr.NewProductNotFound(item.ProductID)
			}
			return nil, 0, apperr.ProductFetchFailed.WrapParent(err)
		}

		// A negative stored price is a data-integrity fault, not a user
		// error.
		if product.Price < 0 {
			return nil, 0, apperr.NewProductPriceCorrupt(item.ProductID)
		}

		total += product.Price * float64(item.Quantity)
		productList = append(productList, model.OrderProductItem{
			ProductID:    productID,
			Quantity:     item.Quantity,
			PricePerUnit: product.Price,
		})
	}

	return productList, total, nil
}
