package repository

import (
	"context"
	"time"

	"rentzy-backend/internal/domain"
)

// TxManager runs a function inside one database transaction. The transaction
// travels in the context; repositories pick it up transparently, so an
// idempotency check and the write it guards can never be split across
// connections. Nothing network-bound belongs inside fn.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// LockByID reads a booking under a row lock. Only meaningful inside a
	// TxManager unit of work; it serializes check-then-write sequences that
	// no status compare-and-swap protects.
	LockByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, error)
	GetByRemainingOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, error)
	// UpdateStatus is a compare-and-swap on status: it fails with
	// ErrStateConflict when the row no longer holds the expected prior status.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	SetOrderCode(ctx context.Context, id int64, orderCode int64) error
	SetRemainingOrderCode(ctx context.Context, id int64, orderCode int64) error
	AddToTotalPaid(ctx context.Context, id int64, amount int64) error
	AddToTrafficFinePaid(ctx context.Context, id int64, amount int64) error
	ListByStatusEndedBefore(ctx context.Context, status domain.BookingStatus, endedBefore time.Time) ([]domain.Booking, error)
	ListByStatusStartingWithin(ctx context.Context, status domain.BookingStatus, window time.Duration) ([]domain.Booking, error)
}

type CancellationRepository interface {
	Create(ctx context.Context, c *domain.Cancellation) error
	GetByID(ctx context.Context, id int64) (*domain.Cancellation, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Cancellation, error)
	MarkOwnerApproved(ctx context.Context, id int64, renterTrack, ownerTrack domain.RefundStatus, approvedAt time.Time) error
	// UpdateTrackStatus is a compare-and-swap on one refund track: it fails
	// with ErrStateConflict unless the track currently holds the from status.
	UpdateTrackStatus(ctx context.Context, id int64, track domain.RefundTrack, from, to domain.RefundStatus, reason string, processedAt time.Time) error
}

type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	// FindCompleted looks up the idempotency key for webhook deliveries:
	// one COMPLETED row per (booking, type, amount, payment method).
	FindCompleted(ctx context.Context, bookingID int64, txType domain.TransactionType, amount int64, paymentMethod string) (*domain.Transaction, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int64) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error
}

type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type CredentialRepository interface {
	Get(ctx context.Context, provider string) (*domain.ProviderCredential, error)
	Upsert(ctx context.Context, cred *domain.ProviderCredential) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type ContractRepository interface {
	Create(ctx context.Context, rec *domain.ContractRecord) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.ContractRecord, error)
}
