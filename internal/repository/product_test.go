package repository

import (
	"context"
	"os"
	"testing"

	"wbbot/parser/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real PostgreSQL, e.g.
// WBBOT_TEST_DATABASE_DSN="host=localhost user=wbbot password=wbbot dbname=wbbot sslmode=disable"
func TestSaveProducts(t *testing.T) {
	dsn := os.Getenv("WBBOT_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("WBBOT_TEST_DATABASE_DSN not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	repo := NewProductRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	id := uuid.NewString()[:8]
	product := domain.Product{ID: "test-" + id, Name: "Платье", Price: decimal.RequireFromString("1999.50"), Discount: 20}

	require.NoError(t, repo.SaveProducts(ctx, "cycle-1", []domain.Product{product}))
	product.Discount = 25
	require.NoError(t, repo.SaveProducts(ctx, "cycle-2", []domain.Product{product}))
	require.NoError(t, repo.SaveProducts(ctx, "cycle-3", nil))

	var cycleID string
	var discount int
	err = db.QueryRow(ctx, `SELECT cycle_id, (data->>'discount')::int FROM products WHERE id = $1`, product.ID).
		Scan(&cycleID, &discount)
	require.NoError(t, err)
	assert.Equal(t, "cycle-2", cycleID)
	assert.Equal(t, 25, discount)

	_, err = db.Exec(ctx, `DELETE FROM products WHERE id = $1`, product.ID)
	require.NoError(t, err)
}
