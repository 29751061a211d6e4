package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusDepositPaid     BookingStatus = "deposit_paid"
	BookingStatusFullyPaid       BookingStatus = "fully_paid"
	BookingStatusCancelRequested BookingStatus = "cancel_requested"
	BookingStatusCanceled        BookingStatus = "canceled"
	BookingStatusCompleted       BookingStatus = "completed"
)

// Booking is one rental agreement between a renter and a vehicle owner.
// All money fields are VND amounts (no subunit).
type Booking struct {
	ID                 int64         `json:"id"`
	VehicleID          int64         `json:"vehicle_id"`
	RenterID           int64         `json:"renter_id"`
	OwnerID            int64         `json:"owner_id"`
	TotalAmount        int64         `json:"total_amount"`
	TotalPaid          int64         `json:"total_paid"`
	TrafficFinePaid    int64         `json:"traffic_fine_paid"`
	OrderCode          *int64        `json:"order_code,omitempty"`
	OrderCodeRemaining *int64        `json:"order_code_remaining,omitempty"`
	LoyaltyPointsUsed  int64         `json:"loyalty_points_used"`
	StartDate          time.Time     `json:"start_date"`
	EndDate            time.Time     `json:"end_date"`
	Status             BookingStatus `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// DepositAmount returns the initial partial payment required to move a
// confirmed booking to deposit_paid.
func (b *Booking) DepositAmount(depositPercent int) int64 {
	return b.TotalAmount * int64(depositPercent) / 100
}

// RemainingAmount returns the unpaid balance of the contracted price.
func (b *Booking) RemainingAmount() int64 {
	remaining := b.TotalAmount - b.TotalPaid
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsCancellable reports whether the renter may still request cancellation
// from the current status. Trip-start checks are the fee calculator's job.
func (b *Booking) IsCancellable() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusDepositPaid, BookingStatusFullyPaid:
		return true
	}
	return false
}

// IsTerminal reports whether the booking can never change status again.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCanceled || b.Status == BookingStatusCompleted
}
