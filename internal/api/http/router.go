package http

import (
	"database/sql"
	"net/http"
	"time"

	"duedesk-backend/internal/security"
	"duedesk-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services bundles everything the router needs.
type Services struct {
	Customers service.CustomerService
	Payments  service.PaymentService
	Ledger    service.LedgerService
	Reminders service.ReminderService
	Auth      service.AuthService
	Tokens    security.TokenManager
	DB        *sql.DB
}

// NewRouter builds the API route table. Customer and payment routes are open,
// admin routes sit behind the bearer-token middleware.
func NewRouter(deps Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	customers := NewCustomerHandler(deps.Customers)
	payments := NewPaymentHandler(deps.Payments)
	ledger := NewLedgerHandler(deps.Ledger)
	reminders := NewReminderHandler(deps.Reminders)
	auth := NewAuthHandler(deps.Auth)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", healthHandler(deps.DB)).Methods(http.MethodGet)

	api.HandleFunc("/customers", customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers", customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", customers.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", customers.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/customers/{id}/payment", payments.UpdatePayment).Methods(http.MethodPatch)
	api.HandleFunc("/customers/{id}/process-payment", payments.ProcessPayment).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/reactivate", payments.Reactivate).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/reset", payments.Reset).Methods(http.MethodPatch)

	api.HandleFunc("/customers/{id}/transactions", ledger.CustomerTransactions).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}/cycles", ledger.Cycles).Methods(http.MethodGet)
	api.HandleFunc("/transactions", ledger.Transactions).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/summary", ledger.Dashboard).Methods(http.MethodGet)

	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(AuthMiddleware(deps.Tokens))
	protected.HandleFunc("/auth/verify", auth.Verify).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", auth.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/change-password", auth.ChangePassword).Methods(http.MethodPost)
	protected.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/customers/send-reminders", reminders.SendReminders).Methods(http.MethodPost)

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "ok"
		status := http.StatusOK
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				dbStatus = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}
		respond(w, status, envelope{
			"status":    "OK",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
