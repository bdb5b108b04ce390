package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/repository"

	"github.com/go-playground/validator/v10"
)

type customerService struct {
	store    repository.Store
	validate *validator.Validate
}

func NewCustomerService(store repository.Store) CustomerService {
	return &customerService{
		store:    store,
		validate: validator.New(),
	}
}

func (s *customerService) Create(ctx context.Context, draft CustomerDraft) (*domain.CustomerDetails, error) {
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	// Case-sensitive exact match, pre-checked for a friendly error; the
	// unique index still backs it up under concurrency.
	if _, err := s.store.Customers().GetByEmail(ctx, draft.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.WrapStorage("check email uniqueness", err)
	}

	c := &domain.Customer{
		Name:        draft.Name,
		Number:      draft.Number,
		Email:       draft.Email,
		AmountToPay: draft.AmountToPay,
		AmountPaid:  draft.AmountPaid,
		Status:      domain.CustomerStatusActive,
		Cycle:       1,
	}
	if err := s.store.Customers().Create(ctx, c); err != nil {
		return nil, domain.WrapStorage("create customer", err)
	}

	logger.InfoContext(ctx, "Customer created", "customer_id", c.ID, "email", c.Email)
	details := c.Derive()
	return &details, nil
}

func (s *customerService) Update(ctx context.Context, id int64, draft CustomerDraft) (*domain.CustomerDetails, error) {
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	c, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}

	if c.Email != draft.Email {
		if other, err := s.store.Customers().GetByEmail(ctx, draft.Email); err == nil && other.ID != id {
			return nil, domain.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, domain.WrapStorage("check email uniqueness", err)
		}
	}

	c.Name = draft.Name
	c.Number = draft.Number
	c.Email = draft.Email
	c.AmountToPay = draft.AmountToPay
	c.AmountPaid = draft.AmountPaid
	if err := s.store.Customers().Update(ctx, c); err != nil {
		return nil, domain.WrapStorage("update customer", err)
	}

	details := c.Derive()
	return &details, nil
}

func (s *customerService) Get(ctx context.Context, id int64) (*domain.CustomerDetails, error) {
	c, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}
	details := c.Derive()
	return &details, nil
}

func (s *customerService) List(ctx context.Context, opts ListOptions) ([]domain.CustomerDetails, *CustomerSummary, int64, error) {
	customers, total, err := s.store.Customers().List(ctx, repository.CustomerFilter{
		SortBy: opts.SortBy,
		Order:  opts.Order,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, nil, 0, domain.WrapStorage("list customers", err)
	}

	details := make([]domain.CustomerDetails, 0, len(customers))
	for _, c := range customers {
		d := c.Derive()
		// Status filtering happens on the derived view, after the read.
		if opts.Status != "" && d.PaymentStatus != opts.Status {
			continue
		}
		details = append(details, d)
	}

	return details, summarize(details), total, nil
}

func (s *customerService) Delete(ctx context.Context, id int64) (*domain.CustomerDetails, error) {
	c, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}
	// Transactions and cycle records cascade with the row.
	if err := s.store.Customers().Delete(ctx, id); err != nil {
		return nil, domain.WrapStorage("delete customer", err)
	}

	logger.InfoContext(ctx, "Customer deleted", "customer_id", id, "email", c.Email)
	details := c.Derive()
	return &details, nil
}

func (s *customerService) validateDraft(draft CustomerDraft) error {
	err := s.validate.Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		reasons := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			reasons = append(reasons, describeFieldError(fe))
		}
		return domain.NewInvalidInput("%s", strings.Join(reasons, "; "))
	}
	return domain.NewInvalidInput("%v", err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "please provide a valid email address"
	case "gte":
		return fmt.Sprintf("%s cannot be negative", fe.Field())
	case "ltefield":
		return "amount paid cannot exceed amount to pay"
	default:
		return fmt.Sprintf("%s failed validation on %q", fe.Field(), fe.Tag())
	}
}

func summarize(details []domain.CustomerDetails) *CustomerSummary {
	summary := &CustomerSummary{
		TotalCustomers: len(details),
		StatusCounts: map[domain.PaymentStatus]int{
			domain.PaymentStatusNotPaid:       0,
			domain.PaymentStatusPartiallyPaid: 0,
			domain.PaymentStatusPaid:          0,
			domain.PaymentStatusOverpaid:      0,
		},
	}
	for _, d := range details {
		summary.TotalAmountToPay += d.AmountToPay
		summary.TotalAmountPaid += d.AmountPaid
		summary.TotalAmountRemaining += d.AmountRemaining
		summary.TotalOverpayment += d.Overpayment
		summary.StatusCounts[d.PaymentStatus]++
	}
	summary.TotalAmountToPay = round2(summary.TotalAmountToPay)
	summary.TotalAmountPaid = round2(summary.TotalAmountPaid)
	summary.TotalAmountRemaining = round2(summary.TotalAmountRemaining)
	summary.TotalOverpayment = round2(summary.TotalOverpayment)
	return summary
}

// round2 rounds to two decimal places after full-precision accumulation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
