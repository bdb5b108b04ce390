package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/gateway"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/repository"
)

type paymentService struct {
	store repository.Store
	gw    gateway.Gateway
	locks *keyedMutex
	slots *settlementSlots
}

func NewPaymentService(store repository.Store, gw gateway.Gateway) PaymentService {
	return &paymentService{
		store: store,
		gw:    gw,
		locks: newKeyedMutex(),
		slots: newSettlementSlots(),
	}
}

func (s *paymentService) ApplyPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string) (*domain.CustomerDetails, error) {
	return s.recordPayment(ctx, customerID, amount, mode, description, false)
}

func (s *paymentService) SetPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string) (*domain.CustomerDetails, error) {
	return s.recordPayment(ctx, customerID, amount, mode, description, true)
}

// recordPayment handles the synchronous payment paths (PAYMENT_ADDED and
// PAYMENT_SET). The whole read-validate-write span runs inside the
// customer's exclusive section.
func (s *paymentService) recordPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string, set bool) (*domain.CustomerDetails, error) {
	if err := validatePaymentInput(amount, mode); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(customerID)
	defer unlock()

	c, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}

	newPaid := c.AmountPaid + amount
	if set {
		newPaid = amount
	}
	if err := checkPaymentAllowed(c, newPaid); err != nil {
		return nil, err
	}

	entryType := domain.TransactionTypePaymentAdded
	verb := "Added"
	if set {
		entryType = domain.TransactionTypePaymentSet
		verb = "Set"
	}
	var externalID *string
	if mode != domain.PaymentModeCash {
		ref := gateway.NewTransactionReference(false)
		externalID = &ref
	}
	if description == "" {
		description = fmt.Sprintf("%s payment of %.2f via %s", verb, amount, strings.ToUpper(string(mode)))
	}

	entry := &domain.Transaction{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		Cycle:              c.EffectiveCycle(),
		Type:               entryType,
		Amount:             amount,
		PreviousAmountPaid: c.AmountPaid,
		NewAmountPaid:      newPaid,
		PaymentMode:        mode,
		TransactionID:      externalID,
		PaymentStatus:      domain.SettlementStatusCompleted,
		Description:        description,
	}

	if err := s.commit(ctx, c.ID, newPaid, entry); err != nil {
		return nil, err
	}

	c.AmountPaid = newPaid
	c.UpdatedAt = time.Now()
	details := c.Derive()
	return &details, nil
}

func (s *paymentService) ProcessPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string) (*PaymentResult, error) {
	if err := validatePaymentInput(amount, mode); err != nil {
		return nil, err
	}

	// Cash settles instantly: no gateway, no settlement slot, no reference.
	if mode == domain.PaymentModeCash {
		if description == "" {
			description = fmt.Sprintf("Cash payment of %.2f", amount)
		}
		details, err := s.cashPayment(ctx, customerID, amount, description)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{
			Customer:    details,
			PaymentMode: mode,
			Instant:     true,
			Status:      domain.SettlementStatusCompleted,
		}, nil
	}

	release, err := s.slots.Acquire(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// Preconditions are checked before the attempt is dispatched; a rejected
	// request never reaches the simulated processor and leaves no entry.
	c, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		release()
		return nil, domain.WrapStorage("load customer", err)
	}
	if err := checkPaymentAllowed(c, c.AmountPaid+amount); err != nil {
		release()
		return nil, err
	}

	// The settlement runs to completion on a detached context: abandoning
	// the wait never cancels the attempt, and its outcome is always logged.
	outcomes := make(chan settleOutcome, 1)
	go s.settle(context.WithoutCancel(ctx), customerID, amount, mode, description, release, outcomes)

	select {
	case out := <-outcomes:
		return out.result, out.err
	case <-ctx.Done():
		logger.WarnContext(ctx, "Caller abandoned settlement wait, attempt continues",
			"customer_id", customerID, "mode", mode, "amount", amount)
		return nil, ctx.Err()
	}
}

type settleOutcome struct {
	result *PaymentResult
	err    error
}

// settle performs one gateway attempt and applies its outcome. It owns the
// settlement slot and releases it when the outcome is durably recorded.
func (s *paymentService) settle(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string, release func(), outcomes chan<- settleOutcome) {
	defer release()

	res, gwErr := s.gw.Charge(ctx, customerID, mode, amount)

	unlock := s.locks.Lock(customerID)
	defer unlock()

	c, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		outcomes <- settleOutcome{err: domain.WrapStorage("load customer after settlement", err)}
		return
	}

	if gwErr != nil {
		// The declined attempt is still durably logged, balance untouched.
		if err := s.appendFailed(ctx, c, amount, mode, res.TransactionID,
			orDefault(description, fmt.Sprintf("Failed %s payment of %.2f", strings.ToUpper(string(mode)), amount))); err != nil {
			outcomes <- settleOutcome{err: err}
			return
		}
		outcomes <- settleOutcome{
			result: &PaymentResult{
				TransactionID:  res.TransactionID,
				PaymentMode:    mode,
				ProcessingTime: res.ProcessingTime,
				Status:         domain.SettlementStatusFailed,
			},
			err: gwErr,
		}
		return
	}

	newPaid := c.AmountPaid + amount
	if err := checkPaymentAllowed(c, newPaid); err != nil {
		// Another channel filled the balance while this attempt was in
		// flight. The settlement happened, so it is logged as failed with
		// no balance change, and the precondition error goes to the caller.
		if logErr := s.appendFailed(ctx, c, amount, mode, res.TransactionID,
			fmt.Sprintf("Settled %s payment of %.2f could not be applied: %v", strings.ToUpper(string(mode)), amount, err)); logErr != nil {
			outcomes <- settleOutcome{err: logErr}
			return
		}
		outcomes <- settleOutcome{err: err}
		return
	}

	ref := res.TransactionID
	entry := &domain.Transaction{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		Cycle:              c.EffectiveCycle(),
		Type:               domain.TransactionTypePaymentProcessed,
		Amount:             amount,
		PreviousAmountPaid: c.AmountPaid,
		NewAmountPaid:      newPaid,
		PaymentMode:        mode,
		TransactionID:      &ref,
		PaymentStatus:      domain.SettlementStatusCompleted,
		Description:        orDefault(description, fmt.Sprintf("Processed %s payment of %.2f", strings.ToUpper(string(mode)), amount)),
	}
	if err := s.commit(ctx, c.ID, newPaid, entry); err != nil {
		outcomes <- settleOutcome{err: err}
		return
	}

	c.AmountPaid = newPaid
	c.UpdatedAt = time.Now()
	details := c.Derive()
	outcomes <- settleOutcome{
		result: &PaymentResult{
			Customer:       &details,
			TransactionID:  res.TransactionID,
			PaymentMode:    mode,
			ProcessingTime: res.ProcessingTime,
			Status:         domain.SettlementStatusCompleted,
		},
	}
}

func (s *paymentService) cashPayment(ctx context.Context, customerID int64, amount float64, description string) (*domain.CustomerDetails, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	c, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}
	newPaid := c.AmountPaid + amount
	if err := checkPaymentAllowed(c, newPaid); err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		Cycle:              c.EffectiveCycle(),
		Type:               domain.TransactionTypeCashPayment,
		Amount:             amount,
		PreviousAmountPaid: c.AmountPaid,
		NewAmountPaid:      newPaid,
		PaymentMode:        domain.PaymentModeCash,
		PaymentStatus:      domain.SettlementStatusCompleted,
		Description:        description,
	}
	if err := s.commit(ctx, c.ID, newPaid, entry); err != nil {
		return nil, err
	}

	c.AmountPaid = newPaid
	c.UpdatedAt = time.Now()
	details := c.Derive()
	return &details, nil
}

func (s *paymentService) Reactivate(ctx context.Context, customerID int64, newAmountToPay float64, resetAmountPaid bool, description string) (*domain.CustomerDetails, error) {
	if newAmountToPay < 0 {
		return nil, domain.NewInvalidInput("new amount to pay cannot be negative")
	}

	unlock := s.locks.Lock(customerID)
	defer unlock()

	c, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}

	// The cycle record freezes the pre-mutation amounts.
	outcome := domain.CycleOutcomeIncomplete
	if c.AmountPaid >= c.AmountToPay {
		outcome = domain.CycleOutcomeCompleted
	}
	record := &domain.CycleRecord{
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		CustomerEmail: c.Email,
		CycleNumber:   c.EffectiveCycle(),
		AmountToPay:   c.AmountToPay,
		AmountPaid:    c.AmountPaid,
		Outcome:       outcome,
	}

	newCycle := c.EffectiveCycle() + 1
	newPaid := c.AmountPaid
	if resetAmountPaid {
		newPaid = 0
	}

	entry := &domain.Transaction{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		Cycle:              newCycle,
		Type:               domain.TransactionTypeCustomerReactivated,
		Amount:             newAmountToPay,
		PreviousAmountPaid: c.AmountPaid,
		NewAmountPaid:      newPaid,
		PaymentMode:        domain.PaymentModeCash,
		PaymentStatus:      domain.SettlementStatusCompleted,
		Description:        orDefault(description, fmt.Sprintf("Customer reactivated for cycle %d with new amount: %.2f", newCycle, newAmountToPay)),
	}

	err = s.store.Atomic(ctx, func(st repository.Store) error {
		if err := st.Cycles().Create(ctx, record); err != nil {
			return err
		}
		if err := st.Customers().StartCycle(ctx, c.ID, newCycle, newAmountToPay, newPaid); err != nil {
			return err
		}
		return st.Ledger().Append(ctx, entry)
	})
	if err != nil {
		return nil, domain.WrapStorage("reactivate cycle", err)
	}

	logger.InfoContext(ctx, "Customer reactivated",
		"customer_id", c.ID, "closed_cycle", record.CycleNumber, "outcome", outcome, "new_cycle", newCycle)

	c.Cycle = newCycle
	c.AmountToPay = newAmountToPay
	c.AmountPaid = newPaid
	c.Status = domain.CustomerStatusActive
	c.UpdatedAt = time.Now()
	details := c.Derive()
	return &details, nil
}

func (s *paymentService) Reset(ctx context.Context, customerID int64, newAmountToPay *float64, description string) (*domain.CustomerDetails, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	c, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		return nil, domain.WrapStorage("load customer", err)
	}

	toPay := c.AmountToPay
	if newAmountToPay != nil {
		toPay = *newAmountToPay
	}
	if toPay < 0 {
		return nil, domain.NewInvalidInput("amount to pay cannot be negative")
	}

	// A reset is a within-cycle correction: the cycle number is untouched
	// and no cycle record is written.
	entry := &domain.Transaction{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		Cycle:              c.EffectiveCycle(),
		Type:               domain.TransactionTypePaymentReset,
		Amount:             toPay,
		PreviousAmountPaid: c.AmountPaid,
		NewAmountPaid:      0,
		PaymentMode:        domain.PaymentModeCash,
		PaymentStatus:      domain.SettlementStatusCompleted,
		Description:        orDefault(description, fmt.Sprintf("Payment data reset. New amount to pay: %.2f", toPay)),
	}

	err = s.store.Atomic(ctx, func(st repository.Store) error {
		if err := st.Customers().ResetPayment(ctx, c.ID, toPay); err != nil {
			return err
		}
		return st.Ledger().Append(ctx, entry)
	})
	if err != nil {
		return nil, domain.WrapStorage("reset payment", err)
	}

	c.AmountToPay = toPay
	c.AmountPaid = 0
	c.UpdatedAt = time.Now()
	details := c.Derive()
	return &details, nil
}

// commit writes the balance change and its ledger entry as one unit.
func (s *paymentService) commit(ctx context.Context, customerID int64, newAmountPaid float64, entry *domain.Transaction) error {
	err := s.store.Atomic(ctx, func(st repository.Store) error {
		if err := st.Customers().UpdatePayment(ctx, customerID, newAmountPaid); err != nil {
			return err
		}
		return st.Ledger().Append(ctx, entry)
	})
	return domain.WrapStorage("apply payment", err)
}

func (s *paymentService) appendFailed(ctx context.Context, c *domain.Customer, amount float64, mode domain.PaymentMode, transactionID, description string) error {
	ref := transactionID
	entry := &domain.Transaction{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		Cycle:              c.EffectiveCycle(),
		Type:               domain.TransactionTypePaymentFailed,
		Amount:             amount,
		PreviousAmountPaid: c.AmountPaid,
		NewAmountPaid:      c.AmountPaid,
		PaymentMode:        mode,
		TransactionID:      &ref,
		PaymentStatus:      domain.SettlementStatusFailed,
		Description:        description,
	}
	return domain.WrapStorage("log failed settlement", s.store.Ledger().Append(ctx, entry))
}

func validatePaymentInput(amount float64, mode domain.PaymentMode) error {
	if amount <= 0 {
		return domain.NewInvalidInput("payment amount must be a positive number")
	}
	if !domain.ValidPaymentMode(mode) {
		return domain.NewInvalidInput("invalid payment mode %q, must be cash, card, or upi", mode)
	}
	return nil
}

// checkPaymentAllowed enforces the two payment preconditions against the
// locked snapshot.
func checkPaymentAllowed(c *domain.Customer, newAmountPaid float64) error {
	if c.AmountPaid >= c.AmountToPay {
		return &domain.AlreadySettledError{AmountPaid: c.AmountPaid, AmountToPay: c.AmountToPay}
	}
	if newAmountPaid > c.AmountToPay {
		return &domain.ExceedsBalanceError{AmountToPay: c.AmountToPay, MaxAllowed: c.AmountToPay - c.AmountPaid}
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
