package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// SignalRepository journals emitted trade signals to Postgres
// ⭐ SSOT: 시그널 저널 저장/조회는 여기서만
type SignalRepository struct {
	pool *pgxpool.Pool
}

var _ contracts.SignalSink = (*SignalRepository)(nil)

// NewSignalRepository creates a new signal repository
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS trading;
	CREATE TABLE IF NOT EXISTS trading.signals (
		id          UUID PRIMARY KEY,
		stock_code  VARCHAR(6)  NOT NULL,
		stock_name  TEXT        NOT NULL DEFAULT '',
		market      VARCHAR(8)  NOT NULL DEFAULT '',
		action      VARCHAR(4)  NOT NULL,
		price       BIGINT      NOT NULL,
		quantity    BIGINT      NOT NULL,
		reason      TEXT        NOT NULL DEFAULT '',
		exit_reason VARCHAR(16) NOT NULL DEFAULT '',
		strategy    TEXT        NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_created_at ON trading.signals (created_at DESC);
`

// EnsureSchema creates the journal table when missing
func (r *SignalRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create signal journal schema: %w", err)
	}
	return nil
}

// SaveSignals inserts signals in one transaction (id 중복은 무시)
func (r *SignalRepository) SaveSignals(ctx context.Context, signals []contracts.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v: %w", err, contracts.ErrPersistence)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trading.signals (
			id, stock_code, stock_name, market, action,
			price, quantity, reason, exit_reason, strategy, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, s := range signals {
		batch.Queue(query,
			s.ID, s.Code, s.Name, string(s.Market), string(s.Action),
			s.Price, s.Quantity, s.Reason, string(s.ExitReason), s.Strategy, s.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert signals: %v: %w", err, contracts.ErrPersistence)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v: %w", err, contracts.ErrPersistence)
	}
	return nil
}

// Recent returns the latest signals, newest first
func (r *SignalRepository) Recent(ctx context.Context, limit int) ([]contracts.TradeSignal, error) {
	query := `
		SELECT
			id::text, stock_code, stock_name, market, action,
			price, quantity, reason, exit_reason, strategy, created_at
		FROM trading.signals
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.TradeSignal, 0, limit)
	for rows.Next() {
		var (
			s                          contracts.TradeSignal
			market, action, exitReason string
		)
		if err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &market, &action,
			&s.Price, &s.Quantity, &s.Reason, &exitReason, &s.Strategy, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		s.Market = contracts.Market(market)
		s.Action = contracts.Action(action)
		s.ExitReason = contracts.ExitReason(exitReason)
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
