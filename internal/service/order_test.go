package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmdl25/kenility-challenge/internal/event"
	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/pkg/ptr"
	"github.com/lmdl25/kenility-challenge/pkg/zerror"
)

func requireZError(t *testing.T, err error, status zerror.Status, code string) {
	t.Helper()

	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, status, zErr.Status())
	assert.Equal(t, code, zErr.Code())
}

func testProduct(sku string, price float64) model.Product {
	id, _ := uuid.NewV7()
	now := time.Now()
	return model.Product{
		ID:        id,
		Name:      "product " + sku,
		Sku:       sku,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newOrderServiceForTest(orderRepo *fakeOrderRepo, productRepo *fakeProductRepo, outboxRepo *fakeOutboxRepo) *orderService {
	return NewOrderService(&fakeDB{}, orderRepo, productRepo, outboxRepo).(*orderService)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots prices at creation time", func(t *testing.T) {
		mouse := testProduct("MOUSE-01", 25.50)
		keyboard := testProduct("KB-01", 99.99)
		productRepo := newFakeProductRepo(mouse, keyboard)
		orderRepo := newFakeOrderRepo()
		outboxRepo := &fakeOutboxRepo{}
		svc := newOrderServiceForTest(orderRepo, productRepo, outboxRepo)

		order, err := svc.CreateOrder(ctx, CreateOrderParams{
			ClientName: "Ada",
			Items: []OrderItemParams{
				{ProductID: mouse.ID.String(), Quantity: 2},
				{ProductID: keyboard.ID.String(), Quantity: 1},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "Ada", order.ClientName)
		assert.InDelta(t, 2*25.50+99.99, order.Total, 1e-9)
		require.Len(t, order.ProductList, 2)
		assert.Equal(t, mouse.ID, order.ProductList[0].ProductID)
		assert.Equal(t, 2, order.ProductList[0].Quantity)
		assert.Equal(t, 25.50, order.ProductList[0].PricePerUnit)

		// A later catalog price change must not alter the persisted order.
		mouse.Price = 999
		productRepo.products[mouse.ID] = mouse

		persisted := orderRepo.created[0]
		assert.Equal(t, 25.50, persisted.ProductList[0].PricePerUnit)
		assert.InDelta(t, 2*25.50+99.99, persisted.Total, 1e-9)
	})

	t.Run("writes an order created outbox message in the same flow", func(t *testing.T) {
		product := testProduct("CAM-01", 10)
		outboxRepo := &fakeOutboxRepo{}
		svc := newOrderServiceForTest(newFakeOrderRepo(), newFakeProductRepo(product), outboxRepo)

		order, err := svc.CreateOrder(ctx, CreateOrderParams{
			ClientName: "Ada",
			Items:      []OrderItemParams{{ProductID: product.ID.String(), Quantity: 3}},
		})
		require.NoError(t, err)

		require.Len(t, outboxRepo.msgs, 1)
		assert.Equal(t, event.TopicOrderCreated, outboxRepo.msgs[0].Topic)
		require.NotNil(t, outboxRepo.msgs[0].PartitionKey)
		assert.Equal(t, order.ID.String(), *outboxRepo.msgs[0].PartitionKey)
	})

	t.Run("empty product list never reaches the store", func(t *testing.T) {
		productRepo := newFakeProductRepo()
		orderRepo := newFakeOrderRepo()
		svc := newOrderServiceForTest(orderRepo, productRepo, &fakeOutboxRepo{})

		_, err := svc.CreateOrder(ctx, CreateOrderParams{ClientName: "Ada"})

		requireZError(t, err, zerror.StatusBadRequest, "ORDER_PRODUCT_LIST_EMPTY")
		assert.Zero(t, productRepo.findByIDCalls)
		assert.Empty(t, orderRepo.created)
	})

	t.Run("malformed product id is a bad request", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(), &fakeOutboxRepo{})

		_, err := svc.CreateOrder(ctx, CreateOrderParams{
			ClientName: "Ada",
			Items:      []OrderItemParams{{ProductID: "not-a-uuid", Quantity: 1}},
		})

		requireZError(t, err, zerror.StatusBadRequest, "INVALID_PRODUCT_ID")
		assert.Contains(t, err.Error(), "not-a-uuid")
		assert.Empty(t, orderRepo.created)
	})

	t.Run("unknown product id is not found with no partial write", func(t *testing.T) {
		known := testProduct("KB-02", 5)
		unknownID := uuid.New()
		orderRepo := newFakeOrderRepo()
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(known), &fakeOutboxRepo{})

		_, err := svc.CreateOrder(ctx, CreateOrderParams{
			ClientName: "Ada",
			Items: []OrderItemParams{
				{ProductID: known.ID.String(), Quantity: 1},
				{ProductID: unknownID.String(), Quantity: 1},
			},
		})

		requireZError(t, err, zerror.StatusNotFound, "PRODUCT_NOT_FOUND")
		assert.Contains(t, err.Error(), unknownID.String())
		assert.Empty(t, orderRepo.created)
	})

	t.Run("negative stored price is a data integrity fault", func(t *testing.T) {
		corrupt := testProduct("BAD-01", -3)
		svc := newOrderServiceForTest(newFakeOrderRepo(), newFakeProductRepo(corrupt), &fakeOutboxRepo{})

		_, err := svc.CreateOrder(ctx, CreateOrderParams{
			ClientName: "Ada",
			Items:      []OrderItemParams{{ProductID: corrupt.ID.String(), Quantity: 1}},
		})

		requireZError(t, err, zerror.StatusInternalServerError, "PRODUCT_PRICE_CORRUPT")
	})

	t.Run("persistence failure surfaces as a generic internal error", func(t *testing.T) {
		product := testProduct("CAM-02", 10)
		orderRepo := newFakeOrderRepo()
		orderRepo.createErr = errors.New("connection reset")
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(product), &fakeOutboxRepo{})

		_, err := svc.CreateOrder(ctx, CreateOrderParams{
			ClientName: "Ada",
			Items:      []OrderItemParams{{ProductID: product.ID.String(), Quantity: 1}},
		})

		requireZError(t, err, zerror.StatusInternalServerError, "ORDER_CREATE_FAILED")
	})
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()

	existingOrder := func(orderRepo *fakeOrderRepo, product model.Product) model.Order {
		id, _ := uuid.NewV7()
		order := model.Order{
			ID:         id,
			ClientName: "Ada",
			ProductList: []model.OrderProductItem{
				{ProductID: product.ID, Quantity: 1, PricePerUnit: product.Price},
			},
			Total: product.Price,
		}
		orderRepo.orders[id] = order
		return order
	}

	t.Run("malformed order id is a bad request", func(t *testing.T) {
		svc := newOrderServiceForTest(newFakeOrderRepo(), newFakeProductRepo(), &fakeOutboxRepo{})

		_, err := svc.UpdateOrder(ctx, "nope", UpdateOrderParams{ClientName: ptr.New("Bob")})

		requireZError(t, err, zerror.StatusBadRequest, "INVALID_ORDER_ID")
	})

	t.Run("empty patch is an error not a no-op", func(t *testing.T) {
		product := testProduct("KB-03", 10)
		orderRepo := newFakeOrderRepo()
		order := existingOrder(orderRepo, product)
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(product), &fakeOutboxRepo{})

		_, err := svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderParams{})

		requireZError(t, err, zerror.StatusBadRequest, "ORDER_NO_FIELDS_TO_UPDATE")
	})

	t.Run("supplied empty product list is rejected", func(t *testing.T) {
		product := testProduct("KB-04", 10)
		orderRepo := newFakeOrderRepo()
		order := existingOrder(orderRepo, product)
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(product), &fakeOutboxRepo{})

		_, err := svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderParams{
			Items: ptr.New([]OrderItemParams{}),
		})

		requireZError(t, err, zerror.StatusBadRequest, "ORDER_PRODUCT_LIST_EMPTY")
	})

	t.Run("client name only patch keeps list and total", func(t *testing.T) {
		product := testProduct("KB-05", 12)
		orderRepo := newFakeOrderRepo()
		order := existingOrder(orderRepo, product)
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(product), &fakeOutboxRepo{})

		updated, err := svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderParams{
			ClientName: ptr.New("Grace"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Grace", updated.ClientName)
		assert.Equal(t, order.Total, updated.Total)
		assert.Equal(t, order.ProductList, updated.ProductList)
	})

	t.Run("new product list wholesale replaces the old one", func(t *testing.T) {
		oldProduct := testProduct("OLD-01", 10)
		newProduct := testProduct("NEW-01", 7)
		orderRepo := newFakeOrderRepo()
		order := existingOrder(orderRepo, oldProduct)
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(oldProduct, newProduct), &fakeOutboxRepo{})

		updated, err := svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderParams{
			Items: ptr.New([]OrderItemParams{
				{ProductID: newProduct.ID.String(), Quantity: 3},
			}),
		})
		require.NoError(t, err)

		require.Len(t, updated.ProductList, 1)
		assert.Equal(t, newProduct.ID, updated.ProductList[0].ProductID)
		assert.Equal(t, 7.0, updated.ProductList[0].PricePerUnit)
		assert.InDelta(t, 21.0, updated.Total, 1e-9)
	})

	t.Run("unknown order id is not found", func(t *testing.T) {
		product := testProduct("KB-06", 10)
		svc := newOrderServiceForTest(newFakeOrderRepo(), newFakeProductRepo(product), &fakeOutboxRepo{})

		_, err := svc.UpdateOrder(ctx, uuid.New().String(), UpdateOrderParams{
			ClientName: ptr.New("Grace"),
		})

		requireZError(t, err, zerror.StatusNotFound, "ORDER_NOT_FOUND")
	})
}

func TestTotalForLastCalendarMonth(t *testing.T) {
	ctx := context.Background()

	t.Run("mid april covers all of march", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		orderRepo.sum = 1234.56
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(), &fakeOutboxRepo{})
		svc.now = func() time.Time {
			return time.Date(2025, time.April, 15, 10, 30, 0, 0, time.UTC)
		}

		result, err := svc.TotalForLastCalendarMonth(ctx)
		require.NoError(t, err)

		wantStart := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond)
		assert.Equal(t, wantStart, result.StartDate)
		assert.Equal(t, wantEnd, result.EndDate)
		assert.Equal(t, 1234.56, result.TotalAmount)
		assert.Equal(t, wantStart, orderRepo.sumStart)
		assert.Equal(t, wantEnd, orderRepo.sumEnd)
	})

	t.Run("january rolls back to december of the previous year", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(), &fakeOutboxRepo{})
		svc.now = func() time.Time {
			return time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
		}

		result, err := svc.TotalForLastCalendarMonth(ctx)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), result.StartDate)
		assert.Equal(t,
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond),
			result.EndDate)
	})

	t.Run("no matching orders yields zero not an error", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(), &fakeOutboxRepo{})

		result, err := svc.TotalForLastCalendarMonth(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.TotalAmount)
	})

	t.Run("store fault is an internal error", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		orderRepo.sumErr = errors.New("aggregation failed")
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(), &fakeOutboxRepo{})

		_, err := svc.TotalForLastCalendarMonth(ctx)

		requireZError(t, err, zerror.StatusInternalServerError, "ORDER_STATS_FAILED")
	})
}

func TestHighestAmountOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the order with the maximum total", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		lowID, _ := uuid.NewV7()
		highID, _ := uuid.NewV7()
		orderRepo.orders[lowID] = model.Order{ID: lowID, Total: 10}
		orderRepo.orders[highID] = model.Order{ID: highID, Total: 500}
		svc := newOrderServiceForTest(orderRepo, newFakeProductRepo(), &fakeOutboxRepo{})

		order, err := svc.HighestAmountOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, highID, order.ID)
	})

	t.Run("empty store is an explicit not found", func(t *testing.T) {
		svc := newOrderServiceForTest(newFakeOrderRepo(), newFakeProductRepo(), &fakeOutboxRepo{})

		_, err := svc.HighestAmountOrder(ctx)

		requireZError(t, err, zerror.StatusNotFound, "NO_ORDERS_FOUND")
	})
}
