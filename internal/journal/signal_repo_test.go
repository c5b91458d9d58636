package journal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/pkg/config"
	"github.com/kyungsooNa/Investment-sub000/pkg/database"
)

func TestSaveSignals_EmptyIsNoop(t *testing.T) {
	r := NewSignalRepository(nil)
	assert.NoError(t, r.SaveSignals(context.Background(), nil))
}

func TestSignalRepository_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if testing.Short() || url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{
		URL:             url,
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	defer db.Close()

	r := NewSignalRepository(db.Pool)
	require.NoError(t, r.EnsureSchema(ctx))

	sig := contracts.TradeSignal{
		ID:         uuid.NewString(),
		Code:       "005930",
		Name:       "삼성전자",
		Market:     contracts.MarketKOSPI,
		Action:     contracts.ActionSell,
		Price:      9_400,
		Quantity:   3,
		Reason:     "손절",
		ExitReason: contracts.ExitStopLoss,
		Strategy:   "breakout",
		CreatedAt:  time.Now().Add(time.Hour).Truncate(time.Microsecond),
	}
	require.NoError(t, r.SaveSignals(ctx, []contracts.TradeSignal{sig}))
	require.NoError(t, r.SaveSignals(ctx, []contracts.TradeSignal{sig}), "duplicate id ignored")

	recent, err := r.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, sig.ID, recent[0].ID)
	assert.Equal(t, contracts.ExitStopLoss, recent[0].ExitReason)
	assert.True(t, sig.CreatedAt.Equal(recent[0].CreatedAt))

	_, err = db.Pool.Exec(ctx, `DELETE FROM trading.signals WHERE id = $1`, sig.ID)
	require.NoError(t, err)
}
