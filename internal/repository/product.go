package repository

import (
	"context"
	"fmt"

	"wbbot/parser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	cycle_id TEXT NOT NULL,
	data     JSONB NOT NULL,
	seen_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertProduct = `
INSERT INTO products (id, cycle_id, data, seen_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id)
DO UPDATE SET cycle_id = $2, data = $3, seen_at = now()`

// ProductRepository archives every normalized product seen by an ingestion cycle
type ProductRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveProducts(ctx context.Context, cycleID string, products []domain.Product) error
}

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createProductsTable); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

func (r *productRepository) SaveProducts(ctx context.Context, cycleID string, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, product := range products {
		batch.Queue(upsertProduct, product.ID, cycleID, product)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save %d products: %w", len(products), err)
	}
	return nil
}
