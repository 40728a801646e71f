package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
)

// UpdateOrderParams is a partial patch. Nil fields keep the stored value.
// ProductList and Total always travel together: a new list implies a
// recomputed total.
type UpdateOrderParams struct {
	ClientName  *string
	ProductList []model.OrderProductItem
	Total       *float64
}

type OrderRepository interface {
	WithDB(db db.DB) OrderRepository
	CreateOrder(ctx context.Context, order model.Order) error
	UpdateOrder(ctx context.Context, id uuid.UUID, params UpdateOrderParams) (model.Order, error)
	SumOrderTotalsCreatedBetween(ctx context.Context, start, end time.Time) (float64, error)
	FindHighestTotalOrder(ctx context.Context) (model.Order, error)
}

type orderRepository struct {
	db db.DB
}

func NewOrderRepository(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r orderRepository) WithDB(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r orderRepository) CreateOrder(ctx context.Context, order model.Order) error {
	productList, err := json.Marshal(order.ProductList)
	if err != nil {
		return fmt.Errorf("marshal product list: %w", err)
	}

	total, err := numericFromFloat(order.Total)
	if err != nil {
		return fmt.Errorf("scan total: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, client_name, product_list, total, created_at, updated_at)
		VALUES (@id, @client_name, @product_list, @total, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":           order.ID,
		"client_name":  order.ClientName,
		"product_list": productList,
		"total":        total,
		"created_at":   order.CreatedAt,
		"updated_at":   order.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

// UpdateOrder applies the patch atomically and returns the post-update row.
func (r orderRepository) UpdateOrder(ctx context.Context, id uuid.UUID, params UpdateOrderParams) (model.Order, error) {
	var productList []byte
	if params.ProductList != nil {
		b, err := json.Marshal(params.ProductList)
		if err != nil {
			return model.Order{}, fmt.Errorf("marshal product list: %w", err)
		}
		productList = b
	}

	var total *pgtype.Numeric
	if params.Total != nil {
		n, err := numericFromFloat(*params.Total)
		if err != nil {
			return model.Order{}, fmt.Errorf("scan total: %w", err)
		}
		total = &n
	}

	row := r.db.QueryRow(ctx, `
		UPDATE orders
		SET
			client_name  = COALESCE(@client_name, client_name),
			product_list = COALESCE(@product_list, product_list),
			total        = COALESCE(@total, total),
			updated_at   = NOW()
		WHERE id = @id
		RETURNING id, client_name, product_list, total, created_at, updated_at
	`, pgx.NamedArgs{
		"id":           id,
		"client_name":  params.ClientName,
		"product_list": productList,
		"total":        total,
	})

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrNotFound
		}
		return model.Order{}, fmt.Errorf("update order: %w", err)
	}

	return order, nil
}

// SumOrderTotalsCreatedBetween sums totals of orders created in [start, end].
// Bounds are inclusive; callers pass an end of one millisecond before the
// next window start.
func (r orderRepository) SumOrderTotalsCreatedBetween(ctx context.Context, start, end time.Time) (float64, error) {
	row := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE created_at >= @start AND created_at <= @end
	`, pgx.NamedArgs{
		"start": start,
		"end":   end,
	})

	var sum pgtype.Numeric
	if err := row.Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum order totals: %w", err)
	}

	sumValue, err := sum.Float64Value()
	if err != nil {
		return 0, fmt.Errorf("convert sum to float64: %w", err)
	}

	return sumValue.Float64, nil
}

func (r orderRepository) FindHighestTotalOrder(ctx context.Context) (model.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, client_name, product_list, total, created_at, updated_at
		FROM orders
		ORDER BY total DESC
		LIMIT 1
	`)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrNotFound
		}
		return model.Order{}, fmt.Errorf("find highest total order: %w", err)
	}

	return order, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		order       model.Order
		productList []byte
		total       pgtype.Numeric
	)
	if err := row.Scan(
		&order.ID,
		&order.ClientName,
		&productList,
		&total,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return model.Order{}, err
	}

	if err := json.Unmarshal(productList, &order.ProductList); err != nil {
		return model.Order{}, fmt.Errorf("unmarshal product list: %w", err)
	}

	totalValue, err := total.Float64Value()
	if err != nil {
		return model.Order{}, fmt.Errorf("convert total to float64: %w", err)
	}
	order.Total = totalValue.Float64

	return order, nil
}

func numericFromFloat(f float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%.2f", f)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}
