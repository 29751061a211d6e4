package service

import (
	"context"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/fees"
	"rentzy-backend/internal/payments"
)

type BookingService interface {
	CreateBooking(ctx context.Context, renterID, vehicleID int64, startDate, endDate time.Time) (*domain.Booking, error)
	AcceptBooking(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, *payments.CheckoutLink, error)
	CreateRemainingPaymentLink(ctx context.Context, renterID, bookingID int64) (*payments.CheckoutLink, error)
	CreateTrafficFineLink(ctx context.Context, renterID, bookingID, amount int64) (*payments.CheckoutLink, error)
	ApproveCashBalance(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
}

type WebhookService interface {
	// ProcessPaymentWebhook applies one provider push. ErrDuplicateDelivery
	// and unresolvable order codes are not failures: the caller acks either way.
	ProcessPaymentWebhook(ctx context.Context, payload *payments.WebhookPayload) error
}

type CancellationService interface {
	EstimateFee(ctx context.Context, renterID, bookingID int64) (fees.Breakdown, error)
	RequestCancellation(ctx context.Context, renterID, bookingID int64, reason string) (*domain.Cancellation, error)
	OwnerDecision(ctx context.Context, ownerID, bookingID int64, approve bool) (*domain.Cancellation, error)
	AdminRefundDecision(ctx context.Context, cancellationID int64, track domain.RefundTrack, approve bool, reason string) (*domain.Cancellation, error)
}

type LedgerService interface {
	ListBookingTransactions(ctx context.Context, bookingID int64) ([]domain.Transaction, error)
	// ReversePayout writes a compensating DEBIT row for a completed PAYOUT.
	// The original row is never touched.
	ReversePayout(ctx context.Context, transactionID int64, reason string) (*domain.Transaction, error)
}

// NotificationService is the fire-and-forget side channel invoked after
// state changes: a notification row plus a best-effort FCM push. It never
// fails the financial operation that triggered it.
type NotificationService interface {
	Notify(ctx context.Context, userID int64, title, content string, ntype domain.NotificationType)
	List(ctx context.Context, userID, page, pageSize int64) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

type EmailService interface {
	SendBookingAccepted(ctx context.Context, email, renterName, vehicleName string, depositAmount int64) error
	SendPaymentConfirmed(ctx context.Context, email, renterName string, bookingID, amount int64) error
	SendCancellationRequested(ctx context.Context, email, renterName, vehicleName string) error
	SendCancellationDecision(ctx context.Context, email, vehicleName string, approved bool) error
	SendRefundProcessed(ctx context.Context, email, vehicleName string, amount int64, approved bool) error
}

type ContractService interface {
	// EnsureContract opens at most one signature envelope per booking,
	// guarded by the contract record's existence.
	EnsureContract(ctx context.Context, bookingID int64) error
}

// PaymentLinkProvider is the slice of the payments client the services use.
type PaymentLinkProvider interface {
	CreateCheckoutLink(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutLink, error)
	VerifyWebhookSignature(p *payments.WebhookPayload) bool
}

// EnvelopeProvider is the slice of the e-signature client the services use.
type EnvelopeProvider interface {
	CreateEnvelope(ctx context.Context, bookingID int64) (string, error)
}
