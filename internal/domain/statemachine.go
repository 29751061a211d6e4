package domain

import "fmt"

// legalTransitions is the authoritative status graph. A booking status may
// only change along one of these edges; everything else is a StateConflict.
// cancel_requested reverts to the recorded prior status on owner rejection,
// so all three cancellable statuses appear as targets.
var legalTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:         {BookingStatusConfirmed, BookingStatusCancelRequested},
	BookingStatusConfirmed:       {BookingStatusDepositPaid},
	BookingStatusDepositPaid:     {BookingStatusFullyPaid, BookingStatusCancelRequested},
	BookingStatusFullyPaid:       {BookingStatusCancelRequested, BookingStatusCompleted},
	BookingStatusCancelRequested: {BookingStatusCanceled, BookingStatusFullyPaid, BookingStatusDepositPaid, BookingStatusPending},
	BookingStatusCanceled:        {},
	BookingStatusCompleted:       {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrStateConflict for any illegal edge. Callers
// must not retry automatically; they re-fetch state and re-decide.
func ValidateTransition(from, to BookingStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: booking cannot move from %s to %s", ErrStateConflict, from, to)
	}
	return nil
}
