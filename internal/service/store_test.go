package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/gateway"
	"duedesk-backend/internal/repository"
)

// memStore is an in-memory repository.Store used by the service tests. Writes
// inside Atomic are buffered and applied on success, so a failing unit of
// work leaves no trace, same as a rolled-back transaction.
type memStore struct {
	mu sync.Mutex

	customers map[int64]domain.Customer
	ledger    []domain.Transaction
	cycles    []domain.CycleRecord
	emailLogs []domain.EmailLog
	admins    map[int64]domain.AdminUser

	nextCustomerID int64
	nextEntryID    int64
	nextAdminID    int64

	// error injection
	failAppend error
	failCreate error
	failUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		customers:      make(map[int64]domain.Customer),
		admins:         make(map[int64]domain.AdminUser),
		nextCustomerID: 1,
		nextEntryID:    1,
		nextAdminID:    1,
	}
}

func (m *memStore) addCustomer(c domain.Customer) domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.nextCustomerID
		m.nextCustomerID++
	} else if c.ID >= m.nextCustomerID {
		m.nextCustomerID = c.ID + 1
	}
	if c.Cycle == 0 {
		c.Cycle = 1
	}
	if c.Status == "" {
		c.Status = domain.CustomerStatusActive
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.customers[c.ID] = c
	return c
}

func (m *memStore) customer(id int64) domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[id]
}

func (m *memStore) entries(customerID int64) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, e := range m.ledger {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) Customers() repository.CustomerRepository { return (*memCustomers)(m) }
func (m *memStore) Ledger() repository.TransactionRepository { return (*memLedger)(m) }
func (m *memStore) Cycles() repository.CycleRepository       { return (*memCycles)(m) }
func (m *memStore) EmailLogs() repository.EmailLogRepository { return (*memEmailLogs)(m) }
func (m *memStore) Admins() repository.AdminUserRepository   { return (*memAdmins)(m) }

func (m *memStore) Atomic(ctx context.Context, fn func(repository.Store) error) error {
	m.mu.Lock()
	snapshot := memStore{
		customers: make(map[int64]domain.Customer, len(m.customers)),
		ledger:    append([]domain.Transaction(nil), m.ledger...),
		cycles:    append([]domain.CycleRecord(nil), m.cycles...),
	}
	for id, c := range m.customers {
		snapshot.customers[id] = c
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.customers = snapshot.customers
		m.ledger = snapshot.ledger
		m.cycles = snapshot.cycles
		m.mu.Unlock()
		return err
	}
	return nil
}

type memCustomers memStore

func (m *memCustomers) Create(ctx context.Context, c *domain.Customer) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customers {
		if existing.Email == c.Email {
			return domain.ErrDuplicateEmail
		}
	}
	c.ID = m.nextCustomerID
	m.nextCustomerID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.customers[c.ID] = *c
	return nil
}

func (m *memCustomers) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memCustomers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Email == email {
			c := c
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCustomers) Update(ctx context.Context, c *domain.Customer) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	m.customers[c.ID] = *c
	return nil
}

func (m *memCustomers) UpdatePayment(ctx context.Context, id int64, newAmountPaid float64) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.AmountPaid = newAmountPaid
	c.UpdatedAt = time.Now()
	m.customers[id] = c
	return nil
}

func (m *memCustomers) StartCycle(ctx context.Context, id int64, cycle int32, amountToPay, amountPaid float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Cycle = cycle
	c.AmountToPay = amountToPay
	c.AmountPaid = amountPaid
	c.Status = domain.CustomerStatusActive
	c.UpdatedAt = time.Now()
	m.customers[id] = c
	return nil
}

func (m *memCustomers) ResetPayment(ctx context.Context, id int64, amountToPay float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.AmountToPay = amountToPay
	c.AmountPaid = 0
	c.UpdatedAt = time.Now()
	m.customers[id] = c
	return nil
}

func (m *memCustomers) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *memCustomers) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memCustomers) ListOutstanding(ctx context.Context) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Customer
	for _, c := range m.customers {
		if c.AmountToPay-c.AmountPaid > 0 && c.Email != "" {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memLedger memStore

func (m *memLedger) Append(ctx context.Context, tx *domain.Transaction) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.ID = m.nextEntryID
	m.nextEntryID++
	tx.CreatedAt = time.Now()
	m.ledger = append(m.ledger, *tx)
	return nil
}

func (m *memLedger) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, e := range m.ledger {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memLedger) List(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, e := range m.ledger {
		if filter.CustomerID != 0 && e.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

type memCycles memStore

func (m *memCycles) Create(ctx context.Context, rec *domain.CycleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.cycles) + 1)
	rec.CompletedAt = time.Now()
	m.cycles = append(m.cycles, *rec)
	return nil
}

func (m *memCycles) ListByCustomer(ctx context.Context, customerID int64) ([]domain.CycleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CycleRecord
	for _, rec := range m.cycles {
		if rec.CustomerID == customerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memEmailLogs memStore

func (m *memEmailLogs) Create(ctx context.Context, log *domain.EmailLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = int64(len(m.emailLogs) + 1)
	log.CreatedAt = time.Now()
	m.emailLogs = append(m.emailLogs, *log)
	return nil
}

func (m *memEmailLogs) List(ctx context.Context, limit, offset int) ([]domain.EmailLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.EmailLog(nil), m.emailLogs...), nil
}

type memAdmins memStore

func (m *memAdmins) Create(ctx context.Context, admin *domain.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin.ID = m.nextAdminID
	m.nextAdminID++
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	m.admins[admin.ID] = *admin
	return nil
}

func (m *memAdmins) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *memAdmins) GetByLogin(ctx context.Context, login string) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.IsActive && (a.Username == login || a.Email == login) {
			a := a
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAdmins) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.admins)), nil
}

func (m *memAdmins) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
	m.admins[id] = a
	return nil
}

func (m *memAdmins) UpdateLastLogin(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	a.LastLogin = &now
	m.admins[id] = a
	return nil
}

// scriptedGateway returns canned outcomes in order, then repeats the last one.
type scriptedGateway struct {
	mu       sync.Mutex
	outcomes []gatewayOutcome
	calls    int
}

type gatewayOutcome struct {
	decline bool
	delay   time.Duration
}

func (g *scriptedGateway) Charge(ctx context.Context, customerID int64, mode domain.PaymentMode, amount float64) (*gateway.Result, error) {
	g.mu.Lock()
	idx := g.calls
	if idx >= len(g.outcomes) {
		idx = len(g.outcomes) - 1
	}
	out := g.outcomes[idx]
	g.calls++
	g.mu.Unlock()

	if out.delay > 0 {
		time.Sleep(out.delay)
	}
	if out.decline {
		return &gateway.Result{
			TransactionID:  gateway.NewTransactionReference(true),
			Status:         domain.SettlementStatusFailed,
			ProcessingTime: out.delay,
		}, domain.ErrGatewayDeclined
	}
	return &gateway.Result{
		TransactionID:  gateway.NewTransactionReference(false),
		Status:         domain.SettlementStatusCompleted,
		ProcessingTime: out.delay,
	}, nil
}

// recordingEmail captures reminder sends; fail lists addresses that error.
type recordingEmail struct {
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func (e *recordingEmail) SendPaymentReminder(ctx context.Context, customer domain.CustomerDetails) (string, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.fail[customer.Email]; ok {
		return "", "", err
	}
	e.sent = append(e.sent, customer.Email)
	return "Payment Reminder", "body", nil
}
