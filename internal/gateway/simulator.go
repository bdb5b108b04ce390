// Package gateway simulates the behavioral contract of an external payment
// processor. Cash settles synchronously and never fails here; card and UPI
// settle after a fixed simulated delay and fail with a configured
// probability. The random source is injectable so tests can force outcomes.
package gateway

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/logger"

	"github.com/google/uuid"
)

type Config struct {
	CardDelay   time.Duration
	UPIDelay    time.Duration
	SuccessRate float64
}

// DefaultConfig mirrors the contract defaults: card 2s, upi 1.5s, 95% success.
func DefaultConfig() Config {
	return Config{
		CardDelay:   2 * time.Second,
		UPIDelay:    1500 * time.Millisecond,
		SuccessRate: 0.95,
	}
}

type Result struct {
	// TransactionID is the synthetic settlement reference. Empty for cash:
	// the cash fast path never reaches a processor.
	TransactionID  string
	Status         domain.SettlementStatus
	ProcessingTime time.Duration
}

type Gateway interface {
	// Charge runs one settlement attempt to completion. It does not watch
	// ctx for cancellation: once an attempt is dispatched its outcome is
	// determined and must be reported, the caller decides how long to wait.
	Charge(ctx context.Context, customerID int64, mode domain.PaymentMode, amount float64) (*Result, error)
}

type Simulator struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator builds a simulator around the given random source. Pass a
// seeded rand for deterministic tests; nil falls back to a time-seeded one.
func NewSimulator(cfg Config, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.SuccessRate <= 0 || cfg.SuccessRate > 1 {
		cfg.SuccessRate = DefaultConfig().SuccessRate
	}
	return &Simulator{cfg: cfg, rng: rng}
}

func (s *Simulator) Charge(ctx context.Context, customerID int64, mode domain.PaymentMode, amount float64) (*Result, error) {
	if mode == domain.PaymentModeCash {
		return &Result{Status: domain.SettlementStatusCompleted}, nil
	}

	delay := s.cfg.UPIDelay
	if mode == domain.PaymentModeCard {
		delay = s.cfg.CardDelay
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	if s.roll() {
		res := &Result{
			TransactionID:  NewTransactionReference(false),
			Status:         domain.SettlementStatusCompleted,
			ProcessingTime: delay,
		}
		logger.DebugContext(ctx, "Gateway settlement completed",
			"customer_id", customerID, "mode", mode, "amount", amount, "transaction_id", res.TransactionID)
		return res, nil
	}

	res := &Result{
		TransactionID:  NewTransactionReference(true),
		Status:         domain.SettlementStatusFailed,
		ProcessingTime: delay,
	}
	logger.WarnContext(ctx, "Gateway settlement declined",
		"customer_id", customerID, "mode", mode, "amount", amount, "transaction_id", res.TransactionID)
	return res, domain.ErrGatewayDeclined
}

func (s *Simulator) roll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.cfg.SuccessRate
}

// NewTransactionReference mints a synthetic settlement reference. Manually
// recorded card/upi payments share the same format as simulated ones.
func NewTransactionReference(failed bool) string {
	ref := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:20]
	if failed {
		return "TXN_FAILED_" + ref
	}
	return "TXN_" + ref
}
