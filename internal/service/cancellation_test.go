package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/fees"
)

type cancellationFixture struct {
	bookingRepo      *MockBookingRepo
	cancellationRepo *MockCancellationRepo
	txRepo           *MockTransactionRepo
	userRepo         *MockUserRepo
	vehicleRepo      *MockVehicleRepo
	notifier         *recordingNotifier
	svc              CancellationService
}

func newCancellationFixture() *cancellationFixture {
	f := &cancellationFixture{
		bookingRepo:      new(MockBookingRepo),
		cancellationRepo: new(MockCancellationRepo),
		txRepo:           new(MockTransactionRepo),
		userRepo:         new(MockUserRepo),
		vehicleRepo:      new(MockVehicleRepo),
		notifier:         &recordingNotifier{},
	}
	f.svc = NewCancellationService(
		f.bookingRepo, f.cancellationRepo, f.txRepo, f.userRepo, f.vehicleRepo,
		passthroughTxManager{}, f.notifier, noopEmail{}, fees.New("Asia/Ho_Chi_Minh"),
	)
	return f
}

// muteEmails makes the post-commit email lookups miss so tests that do not
// care about email stay quiet.
func (f *cancellationFixture) muteEmails(ctx context.Context) {
	f.userRepo.On("GetByID", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
	f.vehicleRepo.On("GetByID", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
}

func TestCancellationService_EstimateFeeIsRenterOnly(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	booking := &domain.Booking{
		ID: 7, RenterID: 2, OwnerID: 3,
		TotalAmount: 1_000_000,
		TotalPaid:   300_000,
		Status:      domain.BookingStatusDepositPaid,
		CreatedAt:   time.Now().Add(-3 * time.Hour),
		StartDate:   time.Now().AddDate(0, 0, 10),
	}
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)

	t.Run("RenterSeesTheBreakdown", func(t *testing.T) {
		breakdown, err := f.svc.EstimateFee(ctx, 2, 7)

		assert.NoError(t, err)
		assert.Equal(t, 20, breakdown.FeePercent)
		assert.Equal(t, int64(200_000), breakdown.CancellationFee)
	})

	t.Run("AnyoneElseGetsNotFound", func(t *testing.T) {
		_, err := f.svc.EstimateFee(ctx, 99, 7)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("OwnerGetsNotFoundToo", func(t *testing.T) {
		_, err := f.svc.EstimateFee(ctx, 3, 7)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCancellationService_RequestFreezesFeeFigures(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	booking := &domain.Booking{
		ID: 7, VehicleID: 4, RenterID: 2, OwnerID: 3,
		TotalAmount: 1_000_000,
		TotalPaid:   300_000,
		Status:      domain.BookingStatusDepositPaid,
		CreatedAt:   time.Now().Add(-3 * time.Hour),
		StartDate:   time.Now().AddDate(0, 0, 10),
	}

	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	f.bookingRepo.On("UpdateStatus", ctx, int64(7), domain.BookingStatusDepositPaid, domain.BookingStatusCancelRequested).Return(nil)
	f.cancellationRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Cancellation) bool {
		return c.BookingID == 7 &&
			c.CancellationFee == 200_000 &&
			c.TotalRefundForRenter == 100_000 &&
			c.TotalRefundForOwner == 180_000 &&
			c.RefundStatusRenter == domain.RefundStatusNone &&
			c.RefundStatusOwner == domain.RefundStatusNone &&
			c.PriorStatus == domain.BookingStatusDepositPaid
	})).Return(nil)
	f.muteEmails(ctx)

	cancellation, err := f.svc.RequestCancellation(ctx, 2, 7, "change of plans")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusDepositPaid, cancellation.PriorStatus)
	f.cancellationRepo.AssertExpectations(t)
}

func TestCancellationService_RequestRejectedOnceTripStarted(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	booking := &domain.Booking{
		ID: 7, RenterID: 2,
		TotalAmount: 1_000_000,
		Status:      domain.BookingStatusFullyPaid,
		CreatedAt:   time.Now().AddDate(0, 0, -5),
		StartDate:   time.Now().Add(-2 * time.Hour),
	}
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)

	_, err := f.svc.RequestCancellation(ctx, 2, 7, "")

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	f.bookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.cancellationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancellationService_RequestRejectsWrongStatus(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	booking := &domain.Booking{ID: 7, RenterID: 2, Status: domain.BookingStatusConfirmed}
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)

	_, err := f.svc.RequestCancellation(ctx, 2, 7, "")

	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestCancellationService_OwnerRejectRestoresPriorStatus(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	booking := &domain.Booking{
		ID: 7, RenterID: 2, OwnerID: 3,
		Status: domain.BookingStatusCancelRequested,
	}
	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		PriorStatus:       domain.BookingStatusFullyPaid,
		CancelRequestedAt: time.Now().Add(-time.Hour),
	}

	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	f.cancellationRepo.On("GetByBookingID", ctx, int64(7)).Return(cancellation, nil)
	f.bookingRepo.On("UpdateStatus", ctx, int64(7), domain.BookingStatusCancelRequested, domain.BookingStatusFullyPaid).Return(nil)
	f.muteEmails(ctx)

	_, err := f.svc.OwnerDecision(ctx, 3, 7, false)

	assert.NoError(t, err)
	f.bookingRepo.AssertExpectations(t)
	f.cancellationRepo.AssertNotCalled(t, "MarkOwnerApproved", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancellationService_RenterCanRequestAgainAfterOwnerRejection(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	pending := &domain.Booking{
		ID: 7, VehicleID: 4, RenterID: 2, OwnerID: 3,
		TotalAmount: 1_000_000,
		TotalPaid:   300_000,
		Status:      domain.BookingStatusCancelRequested,
		CreatedAt:   time.Now().Add(-3 * time.Hour),
		StartDate:   time.Now().AddDate(0, 0, 10),
	}
	firstAttempt := &domain.Cancellation{
		ID: 11, BookingID: 7,
		PriorStatus:       domain.BookingStatusDepositPaid,
		CancelRequestedAt: time.Now().Add(-time.Hour),
	}
	restored := &domain.Booking{}
	*restored = *pending
	restored.Status = domain.BookingStatusDepositPaid

	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(pending, nil).Once()
	f.cancellationRepo.On("GetByBookingID", ctx, int64(7)).Return(firstAttempt, nil)
	f.bookingRepo.On("UpdateStatus", ctx, int64(7), domain.BookingStatusCancelRequested, domain.BookingStatusDepositPaid).Return(nil)
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(restored, nil)
	f.bookingRepo.On("UpdateStatus", ctx, int64(7), domain.BookingStatusDepositPaid, domain.BookingStatusCancelRequested).Return(nil)
	f.cancellationRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Cancellation) bool {
		return c.BookingID == 7 &&
			c.PriorStatus == domain.BookingStatusDepositPaid &&
			c.RefundStatusRenter == domain.RefundStatusNone &&
			c.RefundStatusOwner == domain.RefundStatusNone &&
			c.CancelRequestedAt.After(firstAttempt.CancelRequestedAt)
	})).Return(nil)
	f.muteEmails(ctx)

	_, err := f.svc.OwnerDecision(ctx, 3, 7, false)
	assert.NoError(t, err)

	second, err := f.svc.RequestCancellation(ctx, 2, 7, "still need to cancel")

	assert.NoError(t, err)
	assert.True(t, second.CancelRequestedAt.After(firstAttempt.CancelRequestedAt),
		"the fresh attempt carries its own request instant, not the voided one's")
	f.cancellationRepo.AssertExpectations(t)
}

func TestCancellationService_OwnerApproveArmsTracksAndRestoresPoints(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	requestedAt := time.Now().Add(-time.Hour)
	booking := &domain.Booking{
		ID: 7, RenterID: 2, OwnerID: 3,
		TotalAmount: 1_000_000,
		TotalPaid:   300_000,
		// Held three hours before the request, trip three days after it:
		// late tier, so the owner compensation track arms too.
		CreatedAt:         requestedAt.Add(-3 * time.Hour),
		StartDate:         requestedAt.AddDate(0, 0, 3),
		Status:            domain.BookingStatusCancelRequested,
		LoyaltyPointsUsed: 500,
	}
	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		CancellationFee:      500_000,
		TotalRefundForRenter: 0,
		TotalRefundForOwner:  450_000,
		PriorStatus:          domain.BookingStatusDepositPaid,
		CancelRequestedAt:    requestedAt,
	}

	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	f.cancellationRepo.On("GetByBookingID", ctx, int64(7)).Return(cancellation, nil)
	f.bookingRepo.On("UpdateStatus", ctx, int64(7), domain.BookingStatusCancelRequested, domain.BookingStatusCanceled).Return(nil)
	f.cancellationRepo.On("MarkOwnerApproved", ctx, int64(11), domain.RefundStatusPending, domain.RefundStatusPending, mock.Anything).Return(nil)
	f.userRepo.On("AddLoyaltyPoints", ctx, int64(2), int64(500)).Return(nil)
	f.muteEmails(ctx)

	result, err := f.svc.OwnerDecision(ctx, 3, 7, true)

	assert.NoError(t, err)
	assert.Equal(t, domain.RefundStatusPending, result.RefundStatusRenter)
	assert.Equal(t, domain.RefundStatusPending, result.RefundStatusOwner)
	f.userRepo.AssertCalled(t, "AddLoyaltyPoints", ctx, int64(2), int64(500))
}

func TestCancellationService_OwnerApproveFreeCancellationLeavesOwnerTrackIdle(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	requestedAt := time.Now().Add(-time.Hour)
	booking := &domain.Booking{
		ID: 7, RenterID: 2, OwnerID: 3,
		TotalAmount: 1_000_000,
		TotalPaid:   300_000,
		// Requested within the free window: zero fee, no owner share.
		CreatedAt: requestedAt.Add(-30 * time.Minute),
		StartDate: requestedAt.AddDate(0, 0, 5),
		Status:    domain.BookingStatusCancelRequested,
	}
	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		TotalRefundForRenter: 300_000,
		PriorStatus:          domain.BookingStatusDepositPaid,
		CancelRequestedAt:    requestedAt,
	}

	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	f.cancellationRepo.On("GetByBookingID", ctx, int64(7)).Return(cancellation, nil)
	f.bookingRepo.On("UpdateStatus", ctx, int64(7), domain.BookingStatusCancelRequested, domain.BookingStatusCanceled).Return(nil)
	f.cancellationRepo.On("MarkOwnerApproved", ctx, int64(11), domain.RefundStatusPending, domain.RefundStatusNone, mock.Anything).Return(nil)
	f.muteEmails(ctx)

	result, err := f.svc.OwnerDecision(ctx, 3, 7, true)

	assert.NoError(t, err)
	assert.Equal(t, domain.RefundStatusNone, result.RefundStatusOwner)
	f.userRepo.AssertNotCalled(t, "AddLoyaltyPoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancellationService_AdminApprovesRenterTrack(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		TotalRefundForRenter: 100_000,
		TotalRefundForOwner:  180_000,
		RefundStatusRenter:   domain.RefundStatusPending,
		RefundStatusOwner:    domain.RefundStatusPending,
	}
	booking := &domain.Booking{ID: 7, RenterID: 2, OwnerID: 3, Status: domain.BookingStatusCanceled}

	f.cancellationRepo.On("GetByID", ctx, int64(11)).Return(cancellation, nil)
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	f.cancellationRepo.On("UpdateTrackStatus", ctx, int64(11), domain.RefundTrackRenter,
		domain.RefundStatusPending, domain.RefundStatusCompleted, "", mock.Anything).Return(nil)
	f.txRepo.On("Create", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionTypeRefund &&
			tx.Amount == 100_000 &&
			tx.ToUserID != nil && *tx.ToUserID == 2
	})).Return(nil)
	f.muteEmails(ctx)

	_, err := f.svc.AdminRefundDecision(ctx, 11, domain.RefundTrackRenter, true, "")

	assert.NoError(t, err)
	// The owner track is untouched.
	f.cancellationRepo.AssertNotCalled(t, "UpdateTrackStatus", ctx, int64(11), domain.RefundTrackOwner,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.txRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCancellationService_AdminDoubleApproveWritesOneTransaction(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		TotalRefundForOwner: 180_000,
		RefundStatusOwner:   domain.RefundStatusPending,
	}
	booking := &domain.Booking{ID: 7, RenterID: 2, OwnerID: 3}

	f.cancellationRepo.On("GetByID", ctx, int64(11)).Return(cancellation, nil)
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	// First click flips the track, the second click loses the CAS.
	f.cancellationRepo.On("UpdateTrackStatus", ctx, int64(11), domain.RefundTrackOwner,
		domain.RefundStatusPending, domain.RefundStatusCompleted, "", mock.Anything).Return(nil).Once()
	f.cancellationRepo.On("UpdateTrackStatus", ctx, int64(11), domain.RefundTrackOwner,
		domain.RefundStatusPending, domain.RefundStatusCompleted, "", mock.Anything).Return(domain.ErrStateConflict)
	f.txRepo.On("Create", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionTypeCompensation && *tx.ToUserID == 3
	})).Return(nil)
	f.muteEmails(ctx)

	_, err := f.svc.AdminRefundDecision(ctx, 11, domain.RefundTrackOwner, true, "")
	assert.NoError(t, err)
	_, err = f.svc.AdminRefundDecision(ctx, 11, domain.RefundTrackOwner, true, "")
	assert.NoError(t, err, "replayed approval is a quiet no-op")

	f.txRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCancellationService_AdminRejectWritesNoTransaction(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		TotalRefundForRenter: 100_000,
		RefundStatusRenter:   domain.RefundStatusPending,
	}
	booking := &domain.Booking{ID: 7, RenterID: 2, OwnerID: 3}

	f.cancellationRepo.On("GetByID", ctx, int64(11)).Return(cancellation, nil)
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)
	f.cancellationRepo.On("UpdateTrackStatus", ctx, int64(11), domain.RefundTrackRenter,
		domain.RefundStatusPending, domain.RefundStatusRejected, "paid outside the platform", mock.Anything).Return(nil)
	f.muteEmails(ctx)

	_, err := f.svc.AdminRefundDecision(ctx, 11, domain.RefundTrackRenter, false, "paid outside the platform")

	assert.NoError(t, err)
	f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancellationService_AdminApproveZeroAmountFails(t *testing.T) {
	f := newCancellationFixture()
	ctx := context.Background()

	cancellation := &domain.Cancellation{
		ID: 11, BookingID: 7,
		TotalRefundForRenter: 0,
		RefundStatusRenter:   domain.RefundStatusPending,
	}
	booking := &domain.Booking{ID: 7, RenterID: 2, OwnerID: 3}

	f.cancellationRepo.On("GetByID", ctx, int64(11)).Return(cancellation, nil)
	f.bookingRepo.On("GetByID", ctx, int64(7)).Return(booking, nil)

	_, err := f.svc.AdminRefundDecision(ctx, 11, domain.RefundTrackRenter, true, "")

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
