package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/payments"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) LockByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByRemainingOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockBookingRepo) SetOrderCode(ctx context.Context, id int64, orderCode int64) error {
	args := m.Called(ctx, id, orderCode)
	return args.Error(0)
}
func (m *MockBookingRepo) SetRemainingOrderCode(ctx context.Context, id int64, orderCode int64) error {
	args := m.Called(ctx, id, orderCode)
	return args.Error(0)
}
func (m *MockBookingRepo) AddToTotalPaid(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}
func (m *MockBookingRepo) AddToTrafficFinePaid(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}
func (m *MockBookingRepo) ListByStatusEndedBefore(ctx context.Context, status domain.BookingStatus, endedBefore time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, status, endedBefore)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByStatusStartingWithin(ctx context.Context, status domain.BookingStatus, window time.Duration) ([]domain.Booking, error) {
	args := m.Called(ctx, status, window)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockCancellationRepo
type MockCancellationRepo struct {
	mock.Mock
}

func (m *MockCancellationRepo) Create(ctx context.Context, c *domain.Cancellation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCancellationRepo) GetByID(ctx context.Context, id int64) (*domain.Cancellation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cancellation), args.Error(1)
}
func (m *MockCancellationRepo) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Cancellation, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cancellation), args.Error(1)
}
func (m *MockCancellationRepo) MarkOwnerApproved(ctx context.Context, id int64, renterTrack, ownerTrack domain.RefundStatus, approvedAt time.Time) error {
	args := m.Called(ctx, id, renterTrack, ownerTrack, approvedAt)
	return args.Error(0)
}
func (m *MockCancellationRepo) UpdateTrackStatus(ctx context.Context, id int64, track domain.RefundTrack, from, to domain.RefundStatus, reason string, processedAt time.Time) error {
	args := m.Called(ctx, id, track, from, to, reason, processedAt)
	return args.Error(0)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) FindCompleted(ctx context.Context, bookingID int64, txType domain.TransactionType, amount int64, paymentMethod string) (*domain.Transaction, error) {
	args := m.Called(ctx, bookingID, txType, amount, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

// MockContractRepo
type MockContractRepo struct {
	mock.Mock
}

func (m *MockContractRepo) Create(ctx context.Context, rec *domain.ContractRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
func (m *MockContractRepo) GetByBookingID(ctx context.Context, bookingID int64) (*domain.ContractRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContractRecord), args.Error(1)
}

// MockPaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateCheckoutLink(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.CheckoutLink), args.Error(1)
}
func (m *MockPaymentProvider) VerifyWebhookSignature(p *payments.WebhookPayload) bool {
	args := m.Called(p)
	return args.Bool(0)
}

// MockEnvelopeProvider
type MockEnvelopeProvider struct {
	mock.Mock
}

func (m *MockEnvelopeProvider) CreateEnvelope(ctx context.Context, bookingID int64) (string, error) {
	args := m.Called(ctx, bookingID)
	return args.String(0), args.Error(1)
}

// MockContractService
type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) EnsureContract(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

// passthroughTxManager runs the unit of work directly; the repositories
// under it are mocks, so there is no real transaction to manage.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordedNotification is one captured Notify call.
type recordedNotification struct {
	UserID int64
	Title  string
	Type   domain.NotificationType
}

// recordingNotifier captures Notify calls so tests can assert on the side
// channel without wiring a full notification stack.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (r *recordingNotifier) Notify(_ context.Context, userID int64, title, _ string, ntype domain.NotificationType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedNotification{UserID: userID, Title: title, Type: ntype})
}

func (r *recordingNotifier) List(context.Context, int64, int64, int64) ([]domain.Notification, int64, error) {
	return nil, 0, nil
}

func (r *recordingNotifier) MarkAsRead(context.Context, int64, int64) error {
	return nil
}

// noopEmail satisfies EmailService where tests do not care about email.
type noopEmail struct{}

func (noopEmail) SendBookingAccepted(context.Context, string, string, string, int64) error {
	return nil
}
func (noopEmail) SendPaymentConfirmed(context.Context, string, string, int64, int64) error {
	return nil
}
func (noopEmail) SendCancellationRequested(context.Context, string, string, string) error {
	return nil
}
func (noopEmail) SendCancellationDecision(context.Context, string, string, bool) error {
	return nil
}
func (noopEmail) SendRefundProcessed(context.Context, string, string, int64, bool) error {
	return nil
}
