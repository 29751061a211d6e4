package service

import (
	"context"
	"errors"
	"fmt"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type contractService struct {
	contractRepo repository.ContractRepository
	envelopes    EnvelopeProvider
	notifier     NotificationService
	bookingRepo  repository.BookingRepository
}

func NewContractService(contractRepo repository.ContractRepository, envelopes EnvelopeProvider, notifier NotificationService, bookingRepo repository.BookingRepository) ContractService {
	return &contractService{
		contractRepo: contractRepo,
		envelopes:    envelopes,
		notifier:     notifier,
		bookingRepo:  bookingRepo,
	}
}

// EnsureContract opens the signature envelope for a booking exactly once.
// The existence check on our own correlation record is the guard: redelivered
// deposit webhooks find the record and stop before touching the provider.
func (s *contractService) EnsureContract(ctx context.Context, bookingID int64) error {
	_, err := s.contractRepo.GetByBookingID(ctx, bookingID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	envelopeID, err := s.envelopes.CreateEnvelope(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.contractRepo.Create(ctx, &domain.ContractRecord{
		BookingID:  bookingID,
		EnvelopeID: envelopeID,
	}); err != nil {
		return err
	}

	if booking, err := s.bookingRepo.GetByID(ctx, bookingID); err == nil {
		s.notifier.Notify(ctx, booking.RenterID, "Contract ready",
			fmt.Sprintf("The rental contract for booking %d is ready to sign.", bookingID),
			domain.NotificationTypeContract)
	}
	return nil
}
