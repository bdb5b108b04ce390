package service

import (
	"context"
	"sort"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
)

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

func (s *ledgerService) ListCustomerTransactions(ctx context.Context, customerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	if _, err := s.store.Customers().GetByID(ctx, customerID); err != nil {
		return nil, 0, domain.WrapStorage("load customer", err)
	}
	txs, total, err := s.store.Ledger().ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, 0, domain.WrapStorage("list transactions", err)
	}
	return txs, total, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, int64, error) {
	txs, total, err := s.store.Ledger().List(ctx, filter)
	if err != nil {
		return nil, 0, domain.WrapStorage("list transactions", err)
	}
	return txs, total, nil
}

func (s *ledgerService) ListCycles(ctx context.Context, customerID int64) ([]domain.CycleRecord, error) {
	if _, err := s.store.Customers().GetByID(ctx, customerID); err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}
	cycles, err := s.store.Cycles().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, domain.WrapStorage("list cycles", err)
	}
	return cycles, nil
}

func (s *ledgerService) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	customers, _, err := s.store.Customers().List(ctx, repository.CustomerFilter{})
	if err != nil {
		return nil, domain.WrapStorage("list customers", err)
	}

	summary := &domain.DashboardSummary{
		TotalCustomers: len(customers),
		StatusCounts: map[domain.PaymentStatus]int{
			domain.PaymentStatusNotPaid:       0,
			domain.PaymentStatusPartiallyPaid: 0,
			domain.PaymentStatusPaid:          0,
			domain.PaymentStatusOverpaid:      0,
		},
	}

	details := make([]domain.CustomerDetails, 0, len(customers))
	var pctSum float64
	for _, c := range customers {
		d := c.Derive()
		details = append(details, d)

		summary.TotalAmountToPay += d.AmountToPay
		summary.TotalAmountPaid += d.AmountPaid
		summary.TotalAmountRemaining += d.AmountRemaining
		summary.TotalOverpayment += d.Overpayment
		summary.StatusCounts[d.PaymentStatus]++
		pctSum += d.PaymentPercentage

		if d.PaymentStatus == domain.PaymentStatusNotPaid && d.AmountToPay > 0 {
			summary.OverdueCustomers = append(summary.OverdueCustomers, d)
		}
	}

	sort.Slice(details, func(i, j int) bool {
		return details[i].CreatedAt.After(details[j].CreatedAt)
	})
	if len(details) > 5 {
		details = details[:5]
	}
	summary.RecentCustomers = details

	// Monetary aggregates accumulate at full precision and round once.
	summary.TotalAmountToPay = round2(summary.TotalAmountToPay)
	summary.TotalAmountPaid = round2(summary.TotalAmountPaid)
	summary.TotalAmountRemaining = round2(summary.TotalAmountRemaining)
	summary.TotalOverpayment = round2(summary.TotalOverpayment)
	if len(customers) > 0 {
		summary.CollectionEfficiency = round2(pctSum / float64(len(customers)))
	}
	return summary, nil
}
