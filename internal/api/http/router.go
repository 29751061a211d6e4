// Package http wires the booking engine's HTTP surface: the provider-facing
// webhook endpoint plus the JWT-protected renter/owner/admin API.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentzy-backend/internal/security"
	"rentzy-backend/internal/service"
)

// Services bundles everything the router serves.
type Services struct {
	Bookings      service.BookingService
	Webhooks      service.WebhookService
	Cancellations service.CancellationService
	Ledger        service.LedgerService
	Notifications service.NotificationService
}

// NewRouter builds the full route table. Only the provider webhook is
// public; everything else requires a valid bearer token.
func NewRouter(svcs Services, tokens security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	RegisterWebhookRoutes(router, svcs.Webhooks)

	cancellationHandler := NewCancellationHandler(svcs.Cancellations)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	bookingHandler := NewBookingHandler(svcs.Bookings)
	api.HandleFunc("/bookings", bookingHandler.HandleCreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", bookingHandler.HandleGetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/accept", bookingHandler.HandleAcceptBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/payments/remaining-link", bookingHandler.HandleRemainingPaymentLink).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/payments/traffic-fine-link", bookingHandler.HandleTrafficFineLink).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/payments/cash-approval", bookingHandler.HandleCashApproval).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/complete", bookingHandler.HandleCompleteBooking).Methods(http.MethodPost)

	api.HandleFunc("/bookings/{id}/cancellation/estimate", cancellationHandler.HandleEstimateFee).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/cancellation", cancellationHandler.HandleRequestCancellation).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancellation/owner-decision", cancellationHandler.HandleOwnerDecision).Methods(http.MethodPost)

	ledgerHandler := NewLedgerHandler(svcs.Ledger)
	api.HandleFunc("/bookings/{id}/transactions", ledgerHandler.HandleListTransactions).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(RequireRole(security.RoleAdmin))
	admin.HandleFunc("/cancellations/{id}/refund-decision", cancellationHandler.HandleAdminRefundDecision).Methods(http.MethodPost)
	admin.HandleFunc("/transactions/{id}/reverse", ledgerHandler.HandleReversePayout).Methods(http.MethodPost)

	notificationHandler := NewNotificationHandler(svcs.Notifications)
	api.HandleFunc("/notifications", notificationHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notificationHandler.HandleMarkAsRead).Methods(http.MethodPost)

	return router
}
