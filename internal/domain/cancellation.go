package domain

import "time"

type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "none"
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
	RefundStatusCompleted RefundStatus = "completed" // disbursed
)

// RefundTrack selects which settlement track an admin decision applies to.
type RefundTrack string

const (
	RefundTrackRenter RefundTrack = "renter"
	RefundTrackOwner  RefundTrack = "owner"
	RefundTrackBoth   RefundTrack = "both"
)

// Cancellation is the single cancellation attempt attached to a booking.
// The renter track and the owner track are approved independently: the owner
// gates the cancellation itself, the admin gates each disbursement.
type Cancellation struct {
	ID                   int64        `json:"id"`
	BookingID            int64        `json:"booking_id"`
	Reason               string       `json:"reason"`
	CancellationFee      int64        `json:"cancellation_fee"`
	TotalRefundForRenter int64        `json:"total_refund_for_renter"`
	TotalRefundForOwner  int64        `json:"total_refund_for_owner"`
	RefundStatusRenter   RefundStatus `json:"refund_status_renter"`
	RefundStatusOwner    RefundStatus `json:"refund_status_owner"`
	RejectReasonRenter   string       `json:"reject_reason_renter,omitempty"`
	RejectReasonOwner    string       `json:"reject_reason_owner,omitempty"`

	// PriorStatus is the booking status held before cancel_requested. Owner
	// rejection restores exactly this status, never a fixed fallback.
	PriorStatus BookingStatus `json:"prior_status"`

	CancelRequestedAt       time.Time  `json:"cancel_requested_at"`
	OwnerApprovedCancelAt   *time.Time `json:"owner_approved_cancel_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	RefundProcessedAtRenter *time.Time `json:"refund_processed_at_renter,omitempty"`
	RefundProcessedAtOwner  *time.Time `json:"refund_processed_at_owner,omitempty"`
}
