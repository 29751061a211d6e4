package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/fees"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/repository"
)

type cancellationService struct {
	bookingRepo      repository.BookingRepository
	cancellationRepo repository.CancellationRepository
	txRepo           repository.TransactionRepository
	userRepo         repository.UserRepository
	vehicleRepo      repository.VehicleRepository
	txManager        repository.TxManager
	notifier         NotificationService
	emailSvc         EmailService
	calc             fees.Calculator
}

func NewCancellationService(
	bookingRepo repository.BookingRepository,
	cancellationRepo repository.CancellationRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	vehicleRepo repository.VehicleRepository,
	txManager repository.TxManager,
	notifier NotificationService,
	emailSvc EmailService,
	calc fees.Calculator,
) CancellationService {
	return &cancellationService{
		bookingRepo:      bookingRepo,
		cancellationRepo: cancellationRepo,
		txRepo:           txRepo,
		userRepo:         userRepo,
		vehicleRepo:      vehicleRepo,
		txManager:        txManager,
		notifier:         notifier,
		emailSvc:         emailSvc,
		calc:             calc,
	}
}

func snapshotOf(b *domain.Booking) fees.Snapshot {
	return fees.Snapshot{
		TotalAmount: b.TotalAmount,
		TotalPaid:   b.TotalPaid,
		CreatedAt:   b.CreatedAt,
		StartDate:   b.StartDate,
	}
}

// EstimateFee is display-only: the figures are recomputed authoritatively
// when the cancellation is actually requested. Only the renter may look,
// anyone else learns nothing beyond a 404.
func (s *cancellationService) EstimateFee(ctx context.Context, renterID, bookingID int64) (fees.Breakdown, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fees.Breakdown{}, err
	}
	if booking.RenterID != renterID {
		return fees.Breakdown{}, domain.ErrNotFound
	}
	return s.calc.Compute(snapshotOf(booking), time.Now()), nil
}

func (s *cancellationService) RequestCancellation(ctx context.Context, renterID, bookingID int64, reason string) (*domain.Cancellation, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.ErrNotFound
	}
	if !booking.IsCancellable() {
		return nil, fmt.Errorf("%w: booking %d cannot be canceled while %s", domain.ErrStateConflict, bookingID, booking.Status)
	}

	now := time.Now()
	breakdown := s.calc.Compute(snapshotOf(booking), now)
	if !breakdown.CanCancel {
		return nil, fmt.Errorf("%w: the rental has already started", domain.ErrStateConflict)
	}

	// Nothing is owed yet: both tracks start at none and only move once the
	// owner approves. The fee figures are frozen here; the approval step
	// recomputes from cancel_requested_at and lands on the same numbers.
	cancellation := &domain.Cancellation{
		BookingID:            bookingID,
		Reason:               reason,
		CancellationFee:      breakdown.CancellationFee,
		TotalRefundForRenter: breakdown.RefundToRenter,
		TotalRefundForOwner:  breakdown.OwnerRefund,
		RefundStatusRenter:   domain.RefundStatusNone,
		RefundStatusOwner:    domain.RefundStatusNone,
		PriorStatus:          booking.Status,
		CancelRequestedAt:    now,
	}
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, domain.BookingStatusCancelRequested); err != nil {
			return err
		}
		return s.cancellationRepo.Create(ctx, cancellation)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, booking.OwnerID, "Cancellation requested",
		fmt.Sprintf("The renter asked to cancel booking %d. Please approve or reject.", bookingID),
		domain.NotificationTypeCancellation)
	s.sendCancellationEmail(ctx, booking, func(email, renterName, vehicleName string) error {
		return s.emailSvc.SendCancellationRequested(ctx, email, renterName, vehicleName)
	})
	return cancellation, nil
}

// OwnerDecision settles the first gate. Approval moves the booking to
// canceled, arms the refund tracks and restores any loyalty points in one
// transaction. Rejection restores the exact prior status and leaves the
// cancellation record void.
func (s *cancellationService) OwnerDecision(ctx context.Context, ownerID, bookingID int64, approve bool) (*domain.Cancellation, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	cancellation, err := s.cancellationRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !approve {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelRequested, cancellation.PriorStatus); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, booking.RenterID, "Cancellation rejected",
			fmt.Sprintf("The owner rejected your cancellation of booking %d. The booking stays active.", bookingID),
			domain.NotificationTypeCancellation)
		s.sendCancellationEmail(ctx, booking, func(email, _, vehicleName string) error {
			return s.emailSvc.SendCancellationDecision(ctx, email, vehicleName, false)
		})
		return cancellation, nil
	}

	// Authoritative recompute from the request instant, not a fresh clock
	// read: the tier must not change between request and approval.
	breakdown := s.calc.Compute(snapshotOf(booking), cancellation.CancelRequestedAt)
	renterTrack := domain.RefundStatusPending
	ownerTrack := domain.RefundStatusNone
	if breakdown.OwnerRefund > 0 {
		ownerTrack = domain.RefundStatusPending
	}

	now := time.Now()
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelRequested, domain.BookingStatusCanceled); err != nil {
			return err
		}
		if err := s.cancellationRepo.MarkOwnerApproved(ctx, cancellation.ID, renterTrack, ownerTrack, now); err != nil {
			return err
		}
		if booking.LoyaltyPointsUsed > 0 {
			return s.userRepo.AddLoyaltyPoints(ctx, booking.RenterID, booking.LoyaltyPointsUsed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cancellation.RefundStatusRenter = renterTrack
	cancellation.RefundStatusOwner = ownerTrack
	cancellation.OwnerApprovedCancelAt = &now
	cancellation.CancelledAt = &now

	s.notifier.Notify(ctx, booking.RenterID, "Cancellation approved",
		fmt.Sprintf("Booking %d was canceled. Your refund of %d is awaiting disbursement.", bookingID, cancellation.TotalRefundForRenter),
		domain.NotificationTypeCancellation)
	s.sendCancellationEmail(ctx, booking, func(email, _, vehicleName string) error {
		return s.emailSvc.SendCancellationDecision(ctx, email, vehicleName, true)
	})
	return cancellation, nil
}

// AdminRefundDecision settles the second gate, one track at a time. The
// disbursement row is written only while the track is exactly pending, so a
// double click approves once and every later click is a no-op.
func (s *cancellationService) AdminRefundDecision(ctx context.Context, cancellationID int64, track domain.RefundTrack, approve bool, reason string) (*domain.Cancellation, error) {
	cancellation, err := s.cancellationRepo.GetByID(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, cancellation.BookingID)
	if err != nil {
		return nil, err
	}

	var tracks []domain.RefundTrack
	switch track {
	case domain.RefundTrackBoth:
		tracks = []domain.RefundTrack{domain.RefundTrackRenter, domain.RefundTrackOwner}
	case domain.RefundTrackRenter, domain.RefundTrackOwner:
		tracks = []domain.RefundTrack{track}
	default:
		return nil, fmt.Errorf("%w: unknown refund track %q", domain.ErrStateConflict, track)
	}

	now := time.Now()
	var settled []domain.RefundTrack
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		for _, t := range tracks {
			done, err := s.settleTrack(ctx, cancellation, booking, t, approve, reason, now)
			if err != nil {
				return err
			}
			if done {
				settled = append(settled, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range settled {
		s.announceTrack(ctx, cancellation, booking, t, approve)
	}
	return s.cancellationRepo.GetByID(ctx, cancellationID)
}

// settleTrack flips one track out of pending and, on approval, writes its
// disbursement row. A track that is no longer pending is left untouched.
func (s *cancellationService) settleTrack(ctx context.Context, c *domain.Cancellation, booking *domain.Booking, track domain.RefundTrack, approve bool, reason string, now time.Time) (bool, error) {
	var amount int64
	switch track {
	case domain.RefundTrackRenter:
		amount = c.TotalRefundForRenter
	case domain.RefundTrackOwner:
		amount = c.TotalRefundForOwner
	}

	if !approve {
		err := s.cancellationRepo.UpdateTrackStatus(ctx, c.ID, track, domain.RefundStatusPending, domain.RefundStatusRejected, reason, now)
		if errors.Is(err, domain.ErrStateConflict) {
			return false, nil
		}
		return err == nil, err
	}

	if amount <= 0 {
		return false, fmt.Errorf("%w: nothing to disburse on the %s track", domain.ErrStateConflict, track)
	}
	err := s.cancellationRepo.UpdateTrackStatus(ctx, c.ID, track, domain.RefundStatusPending, domain.RefundStatusCompleted, "", now)
	if errors.Is(err, domain.ErrStateConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	entry := &domain.Transaction{
		BookingID:     booking.ID,
		Amount:        amount,
		Status:        domain.TransactionStatusCompleted,
		PaymentMethod: domain.PaymentMethodSystem,
	}
	if track == domain.RefundTrackRenter {
		entry.Type = domain.TransactionTypeRefund
		entry.ToUserID = &booking.RenterID
		entry.Note = fmt.Sprintf("cancellation refund, cancellation %d", c.ID)
	} else {
		entry.Type = domain.TransactionTypeCompensation
		entry.ToUserID = &booking.OwnerID
		entry.Note = fmt.Sprintf("owner compensation, cancellation %d", c.ID)
	}
	return true, s.txRepo.Create(ctx, entry)
}

func (s *cancellationService) announceTrack(ctx context.Context, c *domain.Cancellation, booking *domain.Booking, track domain.RefundTrack, approved bool) {
	userID := booking.RenterID
	amount := c.TotalRefundForRenter
	if track == domain.RefundTrackOwner {
		userID = booking.OwnerID
		amount = c.TotalRefundForOwner
	}

	title := "Refund processed"
	content := fmt.Sprintf("Your refund of %d for booking %d has been disbursed.", amount, booking.ID)
	if !approved {
		title = "Refund rejected"
		content = fmt.Sprintf("Your refund for booking %d was rejected.", booking.ID)
	}
	s.notifier.Notify(ctx, userID, title, content, domain.NotificationTypeRefund)

	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		if vehicle, err := s.vehicleRepo.GetByID(ctx, booking.VehicleID); err == nil {
			if err := s.emailSvc.SendRefundProcessed(ctx, user.Email, vehicle.Name, amount, approved); err != nil {
				logger.Warn("refund email failed", "cancellation_id", c.ID, "error", err)
			}
		}
	}
}

func (s *cancellationService) sendCancellationEmail(ctx context.Context, booking *domain.Booking, send func(email, renterName, vehicleName string) error) {
	renter, err := s.userRepo.GetByID(ctx, booking.RenterID)
	if err != nil {
		return
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, booking.VehicleID)
	if err != nil {
		return
	}
	if err := send(renter.Email, renter.Name, vehicle.Name); err != nil {
		logger.Warn("cancellation email failed", "booking_id", booking.ID, "error", err)
	}
}
