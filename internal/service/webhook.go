package service

import (
	"context"
	"errors"
	"fmt"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/payments"
	"rentzy-backend/internal/repository"
)

type webhookService struct {
	bookingRepo   repository.BookingRepository
	txRepo        repository.TransactionRepository
	userRepo      repository.UserRepository
	txManager     repository.TxManager
	paymentClient PaymentLinkProvider
	notifier      NotificationService
	emailSvc      EmailService
	contractSvc   ContractService
}

func NewWebhookService(
	bookingRepo repository.BookingRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	txManager repository.TxManager,
	paymentClient PaymentLinkProvider,
	notifier NotificationService,
	emailSvc EmailService,
	contractSvc ContractService,
) WebhookService {
	return &webhookService{
		bookingRepo:   bookingRepo,
		txRepo:        txRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		paymentClient: paymentClient,
		notifier:      notifier,
		emailSvc:      emailSvc,
		contractSvc:   contractSvc,
	}
}

// ProcessPaymentWebhook applies a provider callback to the booking it
// belongs to. Deliveries are at-least-once, so a completed transaction with
// the same booking, type, amount and method short-circuits the whole write.
// Every return path maps to an HTTP 200 acknowledgement upstream; returning
// an error here only controls logging, never the provider's retry loop.
func (s *webhookService) ProcessPaymentWebhook(ctx context.Context, payload *payments.WebhookPayload) error {
	if !s.paymentClient.VerifyWebhookSignature(payload) {
		return fmt.Errorf("webhook signature mismatch for order code %d", payload.Data.OrderCode)
	}
	if payload.Code != payments.WebhookCodeSuccess {
		logger.Info("ignoring non-success payment webhook",
			"order_code", payload.Data.OrderCode, "code", payload.Code, "desc", payload.Desc)
		return nil
	}

	booking, txType, err := s.resolveOrderCode(ctx, payload.Data.OrderCode)
	if err != nil {
		return err
	}
	amount := payload.Data.Amount

	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		// The booking row lock serializes concurrent deliveries of the same
		// code. Deposit and balance races also die on the status CAS below,
		// but a traffic fine changes no status: without the lock two fine
		// deliveries would both miss the idempotency probe and both write.
		if _, err := s.bookingRepo.LockByID(ctx, booking.ID); err != nil {
			return err
		}
		existing, err := s.txRepo.FindCompleted(ctx, booking.ID, txType, amount, domain.PaymentMethodOnline)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateDelivery
		}

		switch txType {
		case domain.TransactionTypeDeposit:
			if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusConfirmed, domain.BookingStatusDepositPaid); err != nil {
				return err
			}
			if err := s.bookingRepo.AddToTotalPaid(ctx, booking.ID, amount); err != nil {
				return err
			}
		case domain.TransactionTypeRental:
			if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusDepositPaid, domain.BookingStatusFullyPaid); err != nil {
				return err
			}
			if err := s.bookingRepo.AddToTotalPaid(ctx, booking.ID, amount); err != nil {
				return err
			}
		case domain.TransactionTypeTrafficFine:
			if err := s.bookingRepo.AddToTrafficFinePaid(ctx, booking.ID, amount); err != nil {
				return err
			}
		}

		return s.txRepo.Create(ctx, &domain.Transaction{
			BookingID:     booking.ID,
			FromUserID:    &booking.RenterID,
			Amount:        amount,
			Type:          txType,
			Status:        domain.TransactionStatusCompleted,
			PaymentMethod: domain.PaymentMethodOnline,
			Note:          payload.Desc,
		})
	})
	if errors.Is(err, domain.ErrDuplicateDelivery) {
		logger.Info("duplicate payment webhook acknowledged",
			"booking_id", booking.ID, "type", txType, "amount", amount)
		return nil
	}
	if err != nil {
		return err
	}

	s.afterPayment(ctx, booking, txType, amount)
	return nil
}

// resolveOrderCode classifies a provider order code. Plain deposit and
// balance codes are stored on the booking row; traffic fine codes carry the
// booking id in their upper digits and are never persisted.
func (s *webhookService) resolveOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, domain.TransactionType, error) {
	booking, err := s.bookingRepo.GetByOrderCode(ctx, orderCode)
	if err == nil {
		return booking, domain.TransactionTypeDeposit, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	booking, err = s.bookingRepo.GetByRemainingOrderCode(ctx, orderCode)
	if err == nil {
		return booking, domain.TransactionTypeRental, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	bookingID, ok := payments.DecodeFineOrderCode(orderCode)
	if !ok {
		return nil, "", fmt.Errorf("order code %d matches no booking: %w", orderCode, domain.ErrNotFound)
	}
	booking, err = s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", fmt.Errorf("no booking matches order code %d: %w", orderCode, err)
	}
	return booking, domain.TransactionTypeTrafficFine, nil
}

func (s *webhookService) afterPayment(ctx context.Context, booking *domain.Booking, txType domain.TransactionType, amount int64) {
	var renterMsg, ownerMsg string
	switch txType {
	case domain.TransactionTypeDeposit:
		renterMsg = fmt.Sprintf("Your deposit of %d for booking %d was received.", amount, booking.ID)
		ownerMsg = fmt.Sprintf("The deposit for booking %d was paid.", booking.ID)
	case domain.TransactionTypeRental:
		renterMsg = fmt.Sprintf("Your balance payment of %d for booking %d was received.", amount, booking.ID)
		ownerMsg = fmt.Sprintf("Booking %d is now fully paid.", booking.ID)
	case domain.TransactionTypeTrafficFine:
		renterMsg = fmt.Sprintf("Your traffic fine payment of %d for booking %d was received.", amount, booking.ID)
		ownerMsg = fmt.Sprintf("A traffic fine of %d for booking %d was settled.", amount, booking.ID)
	}
	s.notifier.Notify(ctx, booking.RenterID, "Payment received", renterMsg, domain.NotificationTypePayment)
	s.notifier.Notify(ctx, booking.OwnerID, "Payment received", ownerMsg, domain.NotificationTypePayment)

	if renter, err := s.userRepo.GetByID(ctx, booking.RenterID); err == nil {
		if err := s.emailSvc.SendPaymentConfirmed(ctx, renter.Email, renter.Name, booking.ID, amount); err != nil {
			logger.Warn("payment confirmation email failed", "booking_id", booking.ID, "error", err)
		}
	}

	if txType == domain.TransactionTypeDeposit {
		if err := s.contractSvc.EnsureContract(ctx, booking.ID); err != nil {
			logger.Warn("contract signing request failed", "booking_id", booking.ID, "error", err)
		}
	}
}
