package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const holdingsSchema = `
CREATE TABLE IF NOT EXISTS holdings (
	id             UUID PRIMARY KEY,
	ticker         TEXT NOT NULL,
	quantity       DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
	purchase_price DOUBLE PRECISION NOT NULL CHECK (purchase_price >= 0),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS holdings_created_at_idx ON holdings (created_at, id);
`

// EnsureSchema creates the holdings table when it does not exist yet.
// It is safe to run on every startup.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, holdingsSchema); err != nil {
		return fmt.Errorf("ensure holdings schema: %w", err)
	}
	return nil
}
