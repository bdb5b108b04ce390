package service

import (
	"context"
	"testing"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_ListCustomerTransactions(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store)
	paySvc := NewPaymentService(store, &scriptedGateway{outcomes: []gatewayOutcome{{}}})
	ctx := context.Background()

	c := store.addCustomer(domain.Customer{Name: "Asha", Email: "asha@example.com", AmountToPay: 1000})
	_, err := paySvc.ApplyPayment(ctx, c.ID, 100, domain.PaymentModeCash, "")
	require.NoError(t, err)
	_, err = paySvc.ApplyPayment(ctx, c.ID, 200, domain.PaymentModeCash, "")
	require.NoError(t, err)

	txs, total, err := svc.ListCustomerTransactions(ctx, c.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, txs, 2)

	_, _, err = svc.ListCustomerTransactions(ctx, 404, 50, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerService_ListTransactionsFilter(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store)
	paySvc := NewPaymentService(store, &scriptedGateway{outcomes: []gatewayOutcome{{decline: true}}})
	ctx := context.Background()

	c := store.addCustomer(domain.Customer{Name: "Asha", Email: "asha@example.com", AmountToPay: 1000})
	_, err := paySvc.ApplyPayment(ctx, c.ID, 100, domain.PaymentModeCash, "")
	require.NoError(t, err)
	_, err = paySvc.ProcessPayment(ctx, c.ID, 100, domain.PaymentModeCard, "")
	require.ErrorIs(t, err, domain.ErrGatewayDeclined)

	failed, total, err := svc.ListTransactions(ctx, repository.TransactionFilter{Type: domain.TransactionTypePaymentFailed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, failed, 1)
	assert.Equal(t, domain.SettlementStatusFailed, failed[0].PaymentStatus)
}

func TestLedgerService_ListCycles(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store)
	paySvc := NewPaymentService(store, &scriptedGateway{outcomes: []gatewayOutcome{{}}})
	ctx := context.Background()

	c := store.addCustomer(domain.Customer{Name: "Asha", Email: "asha@example.com", AmountToPay: 500, AmountPaid: 500})
	_, err := paySvc.Reactivate(ctx, c.ID, 800, true, "")
	require.NoError(t, err)

	cycles, err := svc.ListCycles(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.CycleOutcomeCompleted, cycles[0].Outcome)

	_, err = svc.ListCycles(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerService_DashboardSummary(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store)
	ctx := context.Background()

	store.addCustomer(domain.Customer{Name: "A", Email: "a@x.com", AmountToPay: 1000})
	store.addCustomer(domain.Customer{Name: "B", Email: "b@x.com", AmountToPay: 1000, AmountPaid: 500})
	store.addCustomer(domain.Customer{Name: "C", Email: "c@x.com", AmountToPay: 1000, AmountPaid: 1000})

	summary, err := svc.DashboardSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalCustomers)
	assert.Equal(t, 3000.0, summary.TotalAmountToPay)
	assert.Equal(t, 1500.0, summary.TotalAmountPaid)
	assert.Equal(t, 1500.0, summary.TotalAmountRemaining)
	assert.Equal(t, 0.0, summary.TotalOverpayment)
	assert.Equal(t, 1, summary.StatusCounts[domain.PaymentStatusNotPaid])
	assert.Equal(t, 1, summary.StatusCounts[domain.PaymentStatusPartiallyPaid])
	assert.Equal(t, 1, summary.StatusCounts[domain.PaymentStatusPaid])

	// (0 + 50 + 100) / 3
	assert.Equal(t, 50.0, summary.CollectionEfficiency)

	require.Len(t, summary.OverdueCustomers, 1)
	assert.Equal(t, "A", summary.OverdueCustomers[0].Name)
	assert.Len(t, summary.RecentCustomers, 3)
}

func TestLedgerService_DashboardSummaryEmpty(t *testing.T) {
	svc := NewLedgerService(newMemStore())

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCustomers)
	assert.Equal(t, 0.0, summary.CollectionEfficiency)
	assert.Empty(t, summary.OverdueCustomers)
}
