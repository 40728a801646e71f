package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lmdl25/kenility-challenge/internal/auth"
	"github.com/lmdl25/kenility-challenge/internal/config"
	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/service"
	"github.com/lmdl25/kenility-challenge/pkg/validator"
)

type stubUserService struct {
	createFn func(ctx context.Context, params service.CreateUserParams) (model.User, error)
	loginFn  func(ctx context.Context, params service.LoginParams) (service.LoginResult, error)
}

func (s *stubUserService) CreateUser(ctx context.Context, params service.CreateUserParams) (model.User, error) {
	return s.createFn(ctx, params)
}

func (s *stubUserService) Login(ctx context.Context, params service.LoginParams) (service.LoginResult, error) {
	return s.loginFn(ctx, params)
}

type stubProductService struct {
	createFn func(ctx context.Context, params service.CreateProductParams) (model.Product, error)
	getFn    func(ctx context.Context, id string) (model.Product, error)
	attachFn func(ctx context.Context, id string, params service.AttachImageParams) (model.Product, error)
}

func (s *stubProductService) CreateProduct(ctx context.Context, params service.CreateProductParams) (model.Product, error) {
	return s.createFn(ctx, params)
}

func (s *stubProductService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubProductService) AttachImage(ctx context.Context, id string, params service.AttachImageParams) (model.Product, error) {
	return s.attachFn(ctx, id, params)
}

type stubOrderService struct {
	createFn  func(ctx context.Context, params service.CreateOrderParams) (model.Order, error)
	updateFn  func(ctx context.Context, id string, params service.UpdateOrderParams) (model.Order, error)
	totalFn   func(ctx context.Context) (service.MonthlyTotal, error)
	highestFn func(ctx context.Context) (model.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, params service.CreateOrderParams) (model.Order, error) {
	return s.createFn(ctx, params)
}

func (s *stubOrderService) UpdateOrder(ctx context.Context, id string, params service.UpdateOrderParams) (model.Order, error) {
	return s.updateFn(ctx, id, params)
}

func (s *stubOrderService) TotalForLastCalendarMonth(ctx context.Context) (service.MonthlyTotal, error) {
	return s.totalFn(ctx)
}

func (s *stubOrderService) HighestAmountOrder(ctx context.Context) (model.Order, error) {
	return s.highestFn(ctx)
}

type stubHealth struct {
	healthy bool
	err     error
}

func (s *stubHealth) IsHealthy(context.Context) (bool, error) {
	return s.healthy, s.err
}

var testTokenService = auth.NewTokenService(config.Auth{
	JWTSecret: "test-secret",
	TokenTTL:  time.Hour,
})

// newTestRouter builds a router around stub services. Middlewares other
// than bearer auth are left out so tests exercise handlers directly.
func newTestRouter(
	t *testing.T,
	userSvc service.UserService,
	productSvc service.ProductService,
	orderSvc service.OrderService,
) chi.Router {
	t.Helper()

	validate, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	s := &Service{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate:   validate,
		verifier:   testTokenService,
		health:     &stubHealth{healthy: true},
		userSvc:    userSvc,
		productSvc: productSvc,
		orderSvc:   orderSvc,
	}

	r := chi.NewRouter()
	s.RegisterHandlers(r)
	return r
}

func authHeader(t *testing.T) string {
	t.Helper()

	token, err := testTokenService.Issue("tester")
	require.NoError(t, err)
	return "Bearer " + token
}

func authorize(t *testing.T, req *http.Request) *http.Request {
	t.Helper()

	req.Header.Set("Authorization", authHeader(t))
	return req
}
