package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lmdl25/kenility-challenge/internal/apperr"
	"github.com/lmdl25/kenility-challenge/internal/event"
	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/repository"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
	"github.com/lmdl25/kenility-challenge/internal/storage/objstore"
	"github.com/lmdl25/kenility-challenge/pkg/outbox"
	"github.com/lmdl25/kenility-challenge/pkg/ptr"
)

type CreateProductParams struct {
	Name  string
	Sku   string
	Price float64
}

// AttachImageParams carries an uploaded image towards the object store.
type AttachImageParams struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	AttachImage(ctx context.Context, id string, params AttachImageParams) (model.Product, error)
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	storage       objstore.Storage
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	storage objstore.Storage,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		storage:       storage,
	}
}

// CreateProduct inserts a catalog entry with a unique SKU. The pre-check
// gives concurrent duplicates a fast Conflict; the database constraint is
// the source of truth and its violation maps to the same error.
func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if _, err := s.productRepo.FindProductBySku(ctx, params.Sku); err == nil {
		return model.Product{}, apperr.NewSkuConflict(params.Sku)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Product{}, apperr.ProductCreateFailed.WrapParent(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Sku:       params.Sku,
		Price:     params.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ev := event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Sku:       product.Sku,
		Price:     product.Price,
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(product.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Product{}, apperr.NewSkuConflict(params.Sku)
		}
		return model.Product{}, apperr.ProductCreateFailed.WrapParent(err)
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return model.Product{}, apperr.NewInvalidProductID(id)
	}

	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.NewProductNotFound(id)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsDataException(pgErr.Code) {
			return model.Product{}, apperr.NewInvalidProductID(id)
		}

		return model.Product{}, apperr.ProductFetchFailed.WrapParent(err)
	}

	return product, nil
}

// AttachImage uploads the image bytes to the object store and persists the
// resulting public URL on the product. The database update only runs after a
// successful upload, so a storage failure never partially mutates the row.
func (s *productService) AttachImage(ctx context.Context, id string, params AttachImageParams) (model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	basePath := product.Sku
	if basePath == "" {
		basePath = product.ID.String()
	}

	result, err := s.storage.Upload(ctx, objstore.UploadInput{
		Body:        params.Body,
		Size:        params.Size,
		ContentType: params.ContentType,
		BasePath:    basePath,
		Filename:    params.Filename,
	})
	if err != nil {
		return model.Product{}, apperr.ImageUploadFailed.WrapParent(err)
	}

	updated, err := s.productRepo.UpdateProductImageURL(ctx, product.ID, result.URL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.NewProductNotFound(id)
		}
		return model.Product{}, apperr.ProductUpdateFailed.WrapParent(err)
	}

	return updated, nil
}
