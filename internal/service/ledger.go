package service

import (
	"context"
	"errors"
	"fmt"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type ledgerService struct {
	txRepo    repository.TransactionRepository
	txManager repository.TxManager
}

func NewLedgerService(txRepo repository.TransactionRepository, txManager repository.TxManager) LedgerService {
	return &ledgerService{txRepo: txRepo, txManager: txManager}
}

func (s *ledgerService) ListBookingTransactions(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	return s.txRepo.ListByBooking(ctx, bookingID)
}

// ReversePayout corrects a completed payout with a compensating DEBIT row.
// Ledger rows are never mutated, so the payout itself stays in place and the
// pair nets to zero. A payout can only be reversed once.
func (s *ledgerService) ReversePayout(ctx context.Context, transactionID int64, reason string) (*domain.Transaction, error) {
	original, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Type != domain.TransactionTypePayout || original.Status != domain.TransactionStatusCompleted {
		return nil, fmt.Errorf("%w: transaction %d is not a completed payout", domain.ErrStateConflict, transactionID)
	}

	reversal := &domain.Transaction{
		BookingID:     original.BookingID,
		FromUserID:    original.ToUserID,
		Amount:        original.Amount,
		Type:          domain.TransactionTypeDebit,
		Status:        domain.TransactionStatusCompleted,
		PaymentMethod: domain.PaymentMethodSystem,
		Note:          fmt.Sprintf("reversal of payout %d: %s", transactionID, reason),
	}
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.txRepo.FindCompleted(ctx, original.BookingID, domain.TransactionTypeDebit, original.Amount, domain.PaymentMethodSystem)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: payout %d was already reversed", domain.ErrStateConflict, transactionID)
		}
		return s.txRepo.Create(ctx, reversal)
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}
