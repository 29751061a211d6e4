// Package fees computes the cancellation fee and refund split for a booking.
// Everything here is deterministic and side-effect free: the same snapshot
// and the same instant always produce the same breakdown, so it can be run
// for display at request time and again, authoritatively, at approval time.
package fees

import "time"

const (
	freeWindowHours      = 1.0
	earlyTierDays        = 7.0
	earlyTierPercent     = 20
	lateTierPercent      = 50
	platformSharePercent = 10
)

// Calculator applies the tier table in a configured wall-clock zone. Raw
// UTC instants are converted there before any of the math.
type Calculator struct {
	loc *time.Location
}

// New resolves the configured zone name. An unknown or empty name falls
// back to Indochina time, the zone the tier rules were written for.
func New(timezone string) Calculator {
	loc, err := time.LoadLocation(timezone)
	if timezone == "" || err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	return Calculator{loc: loc}
}

// Snapshot is the slice of a booking the calculator needs.
type Snapshot struct {
	TotalAmount int64
	TotalPaid   int64
	CreatedAt   time.Time
	StartDate   time.Time
}

// Breakdown is the full fee and refund split for one cancellation.
type Breakdown struct {
	FeePercent      int
	CancellationFee int64
	RefundToRenter  int64
	PlatformFee     int64
	OwnerRefund     int64
	DaysToStart     float64
	HoursSinceHold  float64

	// CanCancel is false once the trip has started; callers must reject the
	// cancellation upstream rather than charge a fee.
	CanCancel bool
}

// Compute applies the tier table to a booking snapshot at the given instant.
// Approval-time callers pass the cancellation's own cancel_requested_at as
// now, so the fee cannot silently change tier between request and approval.
func (c Calculator) Compute(b Snapshot, now time.Time) Breakdown {
	createdAt := b.CreatedAt.In(c.loc)
	startDate := b.StartDate.In(c.loc)
	at := now.In(c.loc)

	hoursSinceHold := at.Sub(createdAt).Hours()
	daysToStart := startDate.Sub(at).Hours() / 24

	// First match wins.
	var feePercent int
	switch {
	case hoursSinceHold <= freeWindowHours:
		feePercent = 0
	case daysToStart > earlyTierDays:
		feePercent = earlyTierPercent
	default:
		feePercent = lateTierPercent
	}

	fee := b.TotalAmount * int64(feePercent) / 100

	refund := b.TotalPaid - fee
	if refund < 0 {
		refund = 0
	}

	platformFee := fee * platformSharePercent / 100
	ownerRefund := fee - platformFee

	return Breakdown{
		FeePercent:      feePercent,
		CancellationFee: fee,
		RefundToRenter:  refund,
		PlatformFee:     platformFee,
		OwnerRefund:     ownerRefund,
		DaysToStart:     daysToStart,
		HoursSinceHold:  hoursSinceHold,
		CanCancel:       daysToStart >= 0,
	}
}
