package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/logger"
)

// AutoCompleteRentals completes fully paid bookings whose rental period has
// ended. It goes through the booking service, so each completion gets the
// same CAS guard and payout row an owner-triggered completion would.
func (jr *JobRunner) AutoCompleteRentals() {
	jr.runWithRecovery("AutoCompleteRentals", func() {
		ctx := context.Background()

		bookings, err := jr.bookingRepo.ListByStatusEndedBefore(ctx, domain.BookingStatusFullyPaid, time.Now())
		if err != nil {
			logger.Error("Failed to list ended rentals", "error", err)
			return
		}

		completed := 0
		for _, booking := range bookings {
			if _, err := jr.services.Booking.CompleteBooking(ctx, 0, booking.ID); err != nil {
				// A concurrent owner completion loses the CAS race; skip it.
				if errors.Is(err, domain.ErrStateConflict) || errors.Is(err, domain.ErrDuplicateDelivery) {
					continue
				}
				logger.Error("Failed to auto-complete rental", "booking_id", booking.ID, "error", err)
				continue
			}
			completed++
		}
		logger.Info("Auto-completed rentals", "count", completed)
	})
}

// SendPaymentReminders nudges renters whose trip starts soon but whose
// balance is still unpaid.
func (jr *JobRunner) SendPaymentReminders() {
	jr.runWithRecovery("SendPaymentReminders", func() {
		ctx := context.Background()

		bookings, err := jr.bookingRepo.ListByStatusStartingWithin(ctx, domain.BookingStatusDepositPaid, 48*time.Hour)
		if err != nil {
			logger.Error("Failed to list bookings awaiting balance", "error", err)
			return
		}

		for _, booking := range bookings {
			jr.services.Notification.Notify(ctx, booking.RenterID, "Balance payment due",
				fmt.Sprintf("Your rental starts on %s. Pay the remaining %d to keep booking %d.",
					booking.StartDate.Format("2006-01-02"), booking.RemainingAmount(), booking.ID),
				domain.NotificationTypePayment)
		}
		logger.Info("Sent payment reminders", "count", len(bookings))
	})
}

// PurgeCredentials drops provider tokens that expired more than a day ago.
// Live tokens refresh in place; this only clears the leftovers.
func (jr *JobRunner) PurgeCredentials() {
	jr.runWithRecovery("PurgeCredentials", func() {
		ctx := context.Background()

		purged, err := jr.credentialRepo.DeleteExpired(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			logger.Error("Failed to purge expired credentials", "error", err)
			return
		}
		logger.Info("Purged expired credentials", "count", purged)
	})
}
