package gateway

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"duedesk-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zero delays keep the tests fast; the delay plumbing is asserted separately.
func fastConfig(rate float64) Config {
	return Config{CardDelay: 0, UPIDelay: 0, SuccessRate: rate}
}

func TestSimulator_CashIsInstantAndAlwaysSucceeds(t *testing.T) {
	sim := NewSimulator(fastConfig(0.000001), rand.New(rand.NewSource(1)))

	start := time.Now()
	res, err := sim.Charge(context.Background(), 1, domain.PaymentModeCash, 100)
	require.NoError(t, err)

	assert.Empty(t, res.TransactionID)
	assert.Equal(t, domain.SettlementStatusCompleted, res.Status)
	assert.Zero(t, res.ProcessingTime)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSimulator_ForcedSuccess(t *testing.T) {
	sim := NewSimulator(fastConfig(1.0), rand.New(rand.NewSource(42)))

	res, err := sim.Charge(context.Background(), 1, domain.PaymentModeCard, 500)
	require.NoError(t, err)

	assert.Equal(t, domain.SettlementStatusCompleted, res.Status)
	assert.True(t, strings.HasPrefix(res.TransactionID, "TXN_"))
	assert.False(t, strings.HasPrefix(res.TransactionID, "TXN_FAILED_"))
}

func TestSimulator_ForcedFailure(t *testing.T) {
	// A rate of zero is treated as unset; a vanishingly small one forces
	// the roll to fail.
	sim := NewSimulator(Config{SuccessRate: 1e-12}, rand.New(rand.NewSource(7)))

	res, err := sim.Charge(context.Background(), 1, domain.PaymentModeUPI, 500)
	assert.ErrorIs(t, err, domain.ErrGatewayDeclined)
	assert.Equal(t, domain.SettlementStatusFailed, res.Status)
	assert.True(t, strings.HasPrefix(res.TransactionID, "TXN_FAILED_"))
}

func TestSimulator_ChannelDelays(t *testing.T) {
	cfg := Config{
		CardDelay:   40 * time.Millisecond,
		UPIDelay:    20 * time.Millisecond,
		SuccessRate: 1.0,
	}
	sim := NewSimulator(cfg, rand.New(rand.NewSource(1)))

	start := time.Now()
	res, err := sim.Charge(context.Background(), 1, domain.PaymentModeCard, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), cfg.CardDelay)
	assert.Equal(t, cfg.CardDelay, res.ProcessingTime)

	start = time.Now()
	res, err = sim.Charge(context.Background(), 1, domain.PaymentModeUPI, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), cfg.UPIDelay)
	assert.Equal(t, cfg.UPIDelay, res.ProcessingTime)
}

func TestSimulator_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2*time.Second, cfg.CardDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.UPIDelay)
	assert.Equal(t, 0.95, cfg.SuccessRate)
	assert.Greater(t, cfg.CardDelay, cfg.UPIDelay)
}

func TestNewTransactionReference(t *testing.T) {
	ok := NewTransactionReference(false)
	assert.True(t, strings.HasPrefix(ok, "TXN_"))
	assert.Len(t, ok, len("TXN_")+20)

	failed := NewTransactionReference(true)
	assert.True(t, strings.HasPrefix(failed, "TXN_FAILED_"))
	assert.Len(t, failed, len("TXN_FAILED_")+20)

	body := strings.TrimPrefix(ok, "TXN_")
	assert.Equal(t, strings.ToUpper(body), body)

	assert.NotEqual(t, NewTransactionReference(false), NewTransactionReference(false))
}
