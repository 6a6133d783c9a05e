package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/holdings-tracker/internal/models"
)

// ErrNotFound is returned by UpdateByID and DeleteByID for an unknown id.
var ErrNotFound = errors.New("holding not found")

const holdingColumns = `id, ticker, quantity, purchase_price, created_at, updated_at`

type HoldingRepo struct {
	pool *pgxpool.Pool
}

func NewHoldingRepo(pool *pgxpool.Pool) *HoldingRepo {
	return &HoldingRepo{pool: pool}
}

// Insert stores a validated holding. The id is generated here; timestamps come from the database.
func (r *HoldingRepo) Insert(ctx context.Context, in models.HoldingInput) (*models.Holding, error) {
	if in.Ticker == nil || in.Quantity == nil || in.PurchasePrice == nil {
		return nil, fmt.Errorf("insert holding: %w", models.ErrInvalidHolding)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO holdings (id, ticker, quantity, purchase_price)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+holdingColumns,
		uuid.New(), *in.Ticker, *in.Quantity, *in.PurchasePrice,
	)
	h, err := scanHolding(row)
	if err != nil {
		return nil, fmt.Errorf("insert holding: %w", err)
	}
	return h, nil
}

// ListAll returns every holding in insertion order.
func (r *HoldingRepo) ListAll(ctx context.Context) ([]models.Holding, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+holdingColumns+` FROM holdings ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	out, err := collectHoldings(rows)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return out, nil
}

// UpdateByID applies the non-nil fields of patch and returns the updated holding.
func (r *HoldingRepo) UpdateByID(ctx context.Context, id uuid.UUID, patch models.HoldingPatch) (*models.Holding, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE holdings SET
			ticker = COALESCE($2, ticker),
			quantity = COALESCE($3, quantity),
			purchase_price = COALESCE($4, purchase_price),
			updated_at = clock_timestamp()
		 WHERE id = $1
		 RETURNING `+holdingColumns,
		id, patch.Ticker, patch.Quantity, patch.PurchasePrice,
	)
	h, err := scanHolding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update holding %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update holding %s: %w", id, err)
	}
	return h, nil
}

func (r *HoldingRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holding %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete holding %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanHolding(row scannable) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(&h.ID, &h.Ticker, &h.Quantity, &h.PurchasePrice, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func collectHoldings(rows rowsIter) ([]models.Holding, error) {
	out := []models.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
