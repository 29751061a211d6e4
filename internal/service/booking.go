package service

import (
	"context"
	"fmt"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/payments"
	"rentzy-backend/internal/repository"
)

type bookingService struct {
	bookingRepo        repository.BookingRepository
	vehicleRepo        repository.VehicleRepository
	userRepo           repository.UserRepository
	txRepo             repository.TransactionRepository
	txManager          repository.TxManager
	paymentClient      PaymentLinkProvider
	notifier           NotificationService
	emailSvc           EmailService
	depositPercent     int
	platformFeePercent int
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	txManager repository.TxManager,
	paymentClient PaymentLinkProvider,
	notifier NotificationService,
	emailSvc EmailService,
	depositPercent int,
	platformFeePercent int,
) BookingService {
	return &bookingService{
		bookingRepo:        bookingRepo,
		vehicleRepo:        vehicleRepo,
		userRepo:           userRepo,
		txRepo:             txRepo,
		txManager:          txManager,
		paymentClient:      paymentClient,
		notifier:           notifier,
		emailSvc:           emailSvc,
		depositPercent:     depositPercent,
		platformFeePercent: platformFeePercent,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, renterID, vehicleID int64, startDate, endDate time.Time) (*domain.Booking, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID == renterID {
		return nil, fmt.Errorf("%w: owners cannot book their own vehicle", domain.ErrStateConflict)
	}

	days := int64(endDate.Sub(startDate).Hours() / 24)
	if days < 0 {
		return nil, fmt.Errorf("%w: end date must not precede start date", domain.ErrStateConflict)
	}
	days++ // both ends count as rental days

	booking := &domain.Booking{
		VehicleID:   vehicleID,
		RenterID:    renterID,
		OwnerID:     vehicle.OwnerID,
		TotalAmount: days * vehicle.PricePerDay,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      domain.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, vehicle.OwnerID, "New booking request",
		fmt.Sprintf("A renter requested %s from %s to %s", vehicle.Name,
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02")),
		domain.NotificationTypeBooking)

	return booking, nil
}

// AcceptBooking confirms a pending booking and hands the renter a deposit
// checkout link. The status change and the order code are committed before
// the provider is called, so a link failure leaves the booking confirmed and
// a retry simply issues a new link for the stored code.
func (s *bookingService) AcceptBooking(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, *payments.CheckoutLink, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, nil, domain.ErrNotFound
	}

	switch {
	case booking.Status == domain.BookingStatusPending:
		orderCode, err := payments.GenerateOrderCode()
		if err != nil {
			return nil, nil, err
		}
		err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusConfirmed); err != nil {
				return err
			}
			return s.bookingRepo.SetOrderCode(ctx, bookingID, orderCode)
		})
		if err != nil {
			return nil, nil, err
		}
		booking.Status = domain.BookingStatusConfirmed
		booking.OrderCode = &orderCode
	case booking.Status == domain.BookingStatusConfirmed && booking.OrderCode != nil:
		// Retry after an earlier link failure; reuse the stored code.
	default:
		return nil, nil, fmt.Errorf("%w: booking %d cannot be accepted while %s", domain.ErrStateConflict, bookingID, booking.Status)
	}

	link, err := s.paymentClient.CreateCheckoutLink(ctx, payments.CheckoutRequest{
		OrderCode:   *booking.OrderCode,
		Amount:      booking.DepositAmount(s.depositPercent),
		Description: fmt.Sprintf("Deposit for booking %d", bookingID),
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.Notify(ctx, booking.RenterID, "Booking accepted",
		fmt.Sprintf("Your booking %d was accepted. Pay the deposit to secure it.", bookingID),
		domain.NotificationTypeBooking)
	if renter, err := s.userRepo.GetByID(ctx, booking.RenterID); err == nil {
		if vehicle, err := s.vehicleRepo.GetByID(ctx, booking.VehicleID); err == nil {
			if err := s.emailSvc.SendBookingAccepted(ctx, renter.Email, renter.Name, vehicle.Name, booking.DepositAmount(s.depositPercent)); err != nil {
				logger.Warn("booking accepted email failed", "booking_id", bookingID, "error", err)
			}
		}
	}

	return booking, link, nil
}

func (s *bookingService) CreateRemainingPaymentLink(ctx context.Context, renterID, bookingID int64) (*payments.CheckoutLink, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.ErrNotFound
	}
	if booking.Status != domain.BookingStatusDepositPaid {
		return nil, fmt.Errorf("%w: balance is only payable after the deposit, booking %d is %s", domain.ErrStateConflict, bookingID, booking.Status)
	}

	// One code per booking generation event: reuse on repeated requests.
	orderCode := booking.OrderCodeRemaining
	if orderCode == nil {
		code, err := payments.GenerateOrderCode()
		if err != nil {
			return nil, err
		}
		if err := s.bookingRepo.SetRemainingOrderCode(ctx, bookingID, code); err != nil {
			return nil, err
		}
		orderCode = &code
	}

	return s.paymentClient.CreateCheckoutLink(ctx, payments.CheckoutRequest{
		OrderCode:   *orderCode,
		Amount:      booking.RemainingAmount(),
		Description: fmt.Sprintf("Balance for booking %d", bookingID),
	})
}

func (s *bookingService) CreateTrafficFineLink(ctx context.Context, renterID, bookingID, amount int64) (*payments.CheckoutLink, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.ErrNotFound
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: fine amount must be positive", domain.ErrStateConflict)
	}

	return s.paymentClient.CreateCheckoutLink(ctx, payments.CheckoutRequest{
		OrderCode:   payments.EncodeFineOrderCode(bookingID, time.Now()),
		Amount:      amount,
		Description: fmt.Sprintf("Traffic fine for booking %d", bookingID),
	})
}

// ApproveCashBalance records the remaining balance as paid in cash to the
// owner. The existence check and the writes share one transaction, so a
// double click settles the balance exactly once.
func (s *bookingService) ApproveCashBalance(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}

	remaining := booking.RemainingAmount()
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if existing, err := s.txRepo.FindCompleted(ctx, bookingID, domain.TransactionTypeRental, remaining, domain.PaymentMethodCash); err == nil && existing != nil {
			return domain.ErrDuplicateDelivery
		}
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusDepositPaid, domain.BookingStatusFullyPaid); err != nil {
			return err
		}
		if err := s.bookingRepo.AddToTotalPaid(ctx, bookingID, remaining); err != nil {
			return err
		}
		return s.txRepo.Create(ctx, &domain.Transaction{
			BookingID:     bookingID,
			FromUserID:    &booking.RenterID,
			Amount:        remaining,
			Type:          domain.TransactionTypeRental,
			Status:        domain.TransactionStatusCompleted,
			PaymentMethod: domain.PaymentMethodCash,
			Note:          "balance settled in cash, owner-approved",
		})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatusFullyPaid
	booking.TotalPaid += remaining
	s.notifier.Notify(ctx, booking.RenterID, "Payment recorded",
		fmt.Sprintf("The cash balance for booking %d was confirmed by the owner.", bookingID),
		domain.NotificationTypePayment)
	return booking, nil
}

// CompleteBooking closes a finished rental and pays the owner out. ownerID 0
// is the scheduler completing rentals past their end date.
func (s *bookingService) CompleteBooking(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && booking.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}

	payout := booking.TotalPaid - booking.TotalPaid*int64(s.platformFeePercent)/100
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusFullyPaid, domain.BookingStatusCompleted); err != nil {
			return err
		}
		if existing, err := s.txRepo.FindCompleted(ctx, bookingID, domain.TransactionTypePayout, payout, domain.PaymentMethodSystem); err == nil && existing != nil {
			return domain.ErrDuplicateDelivery
		}
		return s.txRepo.Create(ctx, &domain.Transaction{
			BookingID:     bookingID,
			ToUserID:      &booking.OwnerID,
			Amount:        payout,
			Type:          domain.TransactionTypePayout,
			Status:        domain.TransactionStatusCompleted,
			PaymentMethod: domain.PaymentMethodSystem,
			Note:          "owner payout on completion",
		})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatusCompleted
	s.notifier.Notify(ctx, booking.OwnerID, "Rental completed",
		fmt.Sprintf("Booking %d is complete. Your payout of %d has been recorded.", bookingID, payout),
		domain.NotificationTypePayment)
	s.notifier.Notify(ctx, booking.RenterID, "Rental completed",
		fmt.Sprintf("Booking %d is complete. Thanks for riding with us.", bookingID),
		domain.NotificationTypeBooking)
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && booking.RenterID != userID && booking.OwnerID != userID {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}
