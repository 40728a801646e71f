package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/lmdl25/kenility-challenge/internal/apperr"
	"github.com/lmdl25/kenility-challenge/internal/config"
	"github.com/lmdl25/kenility-challenge/internal/http/apierr"
	"github.com/lmdl25/kenility-challenge/internal/http/metric"
	"github.com/lmdl25/kenility-challenge/internal/http/middleware"
	"github.com/lmdl25/kenility-challenge/internal/http/swagger"
	"github.com/lmdl25/kenility-challenge/internal/service"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
	"github.com/lmdl25/kenility-challenge/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	metrics  *metric.Metrics
	validate *validator.DefaultValidator
	verifier middleware.TokenVerifier
	health   db.HealthChecker

	userSvc    service.UserService
	productSvc service.ProductService
	orderSvc   service.OrderService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	verifier middleware.TokenVerifier,
	health db.HealthChecker,
	userSvc service.UserService,
	productSvc service.ProductService,
	orderSvc service.OrderService,
) (*Service, error) {
	validate, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(),
		validate:   validate,
		verifier:   verifier,
		health:     health,
		userSvc:    userSvc,
		productSvc: productSvc,
		orderSvc:   orderSvc,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	users := newUserHandler(s, s.userSvc)
	products := newProductHandler(s, s.productSvc)
	orders := newOrderHandler(s, s.orderSvc)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.create)
		r.Post("/login", users.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(s.verifier))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", products.create)
			r.Get("/{id}", products.get)
			r.Patch("/{id}/image", products.attachImage)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.create)
			r.Patch("/{id}", orders.update)
			r.Get("/stats/total-created-last-month", orders.totalLastMonth)
			r.Get("/stats/highest-amount", orders.highestAmount)
		})
	})

	r.Get("/healthz", s.handleHealth)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy, err := s.health.IsHealthy(r.Context())
	if err != nil || !healthy {
		s.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	s.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

// decodeJSON decodes the request body into T. Malformed bodies surface as
// validation errors so the client gets a 400, not a 500.
func decodeJSON[T any](r *http.Request) (T, error) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, apperr.ValidationErr.WrapParent(err)
	}

	return body, nil
}
