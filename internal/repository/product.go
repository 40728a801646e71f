package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	FindProductBySku(ctx context.Context, sku string) (model.Product, error)
	UpdateProductImageURL(ctx context.Context, id uuid.UUID, imageURL string) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	var price pgtype.Numeric
	if err := price.Scan(fmt.Sprintf("%.2f", product.Price)); err != nil {
		return fmt.Errorf("scan price: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, sku, price, image_url, created_at, updated_at)
		VALUES (@id, @name, @sku, @price, @image_url, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"sku":        product.Sku,
		"price":      price,
		"image_url":  product.ImageURL,
		"created_at": product.CreatedAt,
		"updated_at": product.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r productRepository) FindProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, productSelectQuery+` WHERE id = @id`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}

	return product, nil
}

func (r productRepository) FindProductBySku(ctx context.Context, sku string) (model.Product, error) {
	row := r.db.QueryRow(ctx, productSelectQuery+` WHERE sku = @sku`, pgx.NamedArgs{"sku": sku})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("find product by sku: %w", err)
	}

	return product, nil
}

func (r productRepository) UpdateProductImageURL(ctx context.Context, id uuid.UUID, imageURL string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET image_url = @image_url, updated_at = NOW()
		WHERE id = @id
		RETURNING id, name, sku, price, image_url, deleted_at, created_at, updated_at
	`, pgx.NamedArgs{
		"id":        id,
		"image_url": imageURL,
	})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("update product image url: %w", err)
	}

	return product, nil
}

const productSelectQuery = `
	SELECT id, name, sku, price, image_url, deleted_at, created_at, updated_at
	FROM products`

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   pgtype.Numeric
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Sku,
		&price,
		&product.ImageURL,
		&product.DeletedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	priceValue, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}
	product.Price = priceValue.Float64

	return product, nil
}
