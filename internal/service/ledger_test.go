package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rentzy-backend/internal/domain"
)

func TestLedgerService_ReversePayout(t *testing.T) {
	txRepo := new(MockTransactionRepo)
	svc := NewLedgerService(txRepo, passthroughTxManager{})
	ctx := context.Background()

	ownerID := int64(3)
	payout := &domain.Transaction{
		ID: 5, BookingID: 7, ToUserID: &ownerID,
		Amount: 900_000,
		Type:   domain.TransactionTypePayout,
		Status: domain.TransactionStatusCompleted,
	}

	t.Run("WritesCompensatingDebit", func(t *testing.T) {
		txRepo.On("GetByID", ctx, int64(5)).Return(payout, nil).Once()
		txRepo.On("FindCompleted", ctx, int64(7), domain.TransactionTypeDebit, int64(900_000), domain.PaymentMethodSystem).
			Return(nil, domain.ErrNotFound).Once()
		txRepo.On("Create", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Type == domain.TransactionTypeDebit &&
				tx.Amount == 900_000 &&
				tx.FromUserID != nil && *tx.FromUserID == ownerID
		})).Return(nil).Once()

		reversal, err := svc.ReversePayout(ctx, 5, "double payout")

		assert.NoError(t, err)
		assert.Equal(t, domain.TransactionTypeDebit, reversal.Type)
		txRepo.AssertExpectations(t)
	})

	t.Run("SecondReversalIsRejected", func(t *testing.T) {
		txRepo.On("GetByID", ctx, int64(5)).Return(payout, nil).Once()
		txRepo.On("FindCompleted", ctx, int64(7), domain.TransactionTypeDebit, int64(900_000), domain.PaymentMethodSystem).
			Return(&domain.Transaction{ID: 6}, nil).Once()

		_, err := svc.ReversePayout(ctx, 5, "double payout")

		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("OnlyCompletedPayoutsReverse", func(t *testing.T) {
		refund := &domain.Transaction{ID: 8, Type: domain.TransactionTypeRefund, Status: domain.TransactionStatusCompleted}
		txRepo.On("GetByID", ctx, int64(8)).Return(refund, nil).Once()

		_, err := svc.ReversePayout(ctx, 8, "oops")

		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})
}

func TestLedgerService_ListBookingTransactions(t *testing.T) {
	txRepo := new(MockTransactionRepo)
	svc := NewLedgerService(txRepo, passthroughTxManager{})
	ctx := context.Background()

	rows := []domain.Transaction{{ID: 1, Amount: 300_000}, {ID: 2, Amount: 700_000}}
	txRepo.On("ListByBooking", ctx, int64(7)).Return(rows, nil)

	got, err := svc.ListBookingTransactions(ctx, 7)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestContractService_EnsureContractOnce(t *testing.T) {
	contractRepo := new(MockContractRepo)
	envelopes := new(MockEnvelopeProvider)
	bookingRepo := new(MockBookingRepo)
	notifier := &recordingNotifier{}
	svc := NewContractService(contractRepo, envelopes, notifier, bookingRepo)
	ctx := context.Background()

	t.Run("CreatesEnvelopeWhenMissing", func(t *testing.T) {
		contractRepo.On("GetByBookingID", ctx, int64(7)).Return(nil, domain.ErrNotFound).Once()
		envelopes.On("CreateEnvelope", ctx, int64(7)).Return("env-1", nil).Once()
		contractRepo.On("Create", ctx, mock.MatchedBy(func(rec *domain.ContractRecord) bool {
			return rec.BookingID == 7 && rec.EnvelopeID == "env-1"
		})).Return(nil).Once()
		bookingRepo.On("GetByID", ctx, int64(7)).Return(&domain.Booking{ID: 7, RenterID: 2}, nil).Once()

		assert.NoError(t, svc.EnsureContract(ctx, 7))
		envelopes.AssertExpectations(t)
	})

	t.Run("ExistingRecordShortCircuits", func(t *testing.T) {
		contractRepo.On("GetByBookingID", ctx, int64(7)).Return(&domain.ContractRecord{ID: 1, BookingID: 7}, nil).Once()

		assert.NoError(t, svc.EnsureContract(ctx, 7))
		envelopes.AssertNumberOfCalls(t, "CreateEnvelope", 1)
	})
}
