package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type cancellationRepository struct {
	db *sql.DB
}

func NewCancellationRepository(db *sql.DB) repository.CancellationRepository {
	return &cancellationRepository{db: db}
}

const cancellationColumns = `id, booking_id, reason, cancellation_fee, total_refund_for_renter, total_refund_for_owner,
	 refund_status_renter, refund_status_owner, reject_reason_renter, reject_reason_owner, prior_status,
	 cancel_requested_at, owner_approved_cancel_at, cancelled_at, refund_processed_at_renter, refund_processed_at_owner`

func (r *cancellationRepository) Create(ctx context.Context, c *domain.Cancellation) error {
	query := `INSERT INTO cancellations (booking_id, reason, cancellation_fee, total_refund_for_renter,
	           total_refund_for_owner, refund_status_renter, refund_status_owner, prior_status, cancel_requested_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return q(ctx, r.db).QueryRowContext(ctx, query,
		c.BookingID, c.Reason, c.CancellationFee, c.TotalRefundForRenter, c.TotalRefundForOwner,
		c.RefundStatusRenter, c.RefundStatusOwner, c.PriorStatus, c.CancelRequestedAt,
	).Scan(&c.ID)
}

func (r *cancellationRepository) GetByID(ctx context.Context, id int64) (*domain.Cancellation, error) {
	query := `SELECT ` + cancellationColumns + ` FROM cancellations WHERE id = $1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByBookingID returns the latest cancellation attempt. A booking accrues
// one row per request: after an owner rejection the renter may request again,
// and only the newest row drives the owner's decision.
func (r *cancellationRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Cancellation, error) {
	query := `SELECT ` + cancellationColumns + ` FROM cancellations WHERE booking_id = $1 ORDER BY id DESC LIMIT 1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, bookingID))
}

func (r *cancellationRepository) MarkOwnerApproved(ctx context.Context, id int64, renterTrack, ownerTrack domain.RefundStatus, approvedAt time.Time) error {
	query := `UPDATE cancellations
	          SET refund_status_renter = $1, refund_status_owner = $2, owner_approved_cancel_at = $3, cancelled_at = $3
	          WHERE id = $4 AND owner_approved_cancel_at IS NULL`
	res, err := q(ctx, r.db).ExecContext(ctx, query, renterTrack, ownerTrack, approvedAt, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: cancellation %d already decided by the owner", domain.ErrStateConflict, id)
	}
	return nil
}

// UpdateTrackStatus flips one refund track, guarded by the status it must
// currently hold. Duplicate admin clicks lose the compare-and-swap and get
// ErrStateConflict instead of a second disbursement.
func (r *cancellationRepository) UpdateTrackStatus(ctx context.Context, id int64, track domain.RefundTrack, from, to domain.RefundStatus, reason string, processedAt time.Time) error {
	var query string
	switch track {
	case domain.RefundTrackRenter:
		query = `UPDATE cancellations
		         SET refund_status_renter = $1, reject_reason_renter = $2, refund_processed_at_renter = $3
		         WHERE id = $4 AND refund_status_renter = $5`
	case domain.RefundTrackOwner:
		query = `UPDATE cancellations
		         SET refund_status_owner = $1, reject_reason_owner = $2, refund_processed_at_owner = $3
		         WHERE id = $4 AND refund_status_owner = $5`
	default:
		return fmt.Errorf("unknown refund track %q", track)
	}

	res, err := q(ctx, r.db).ExecContext(ctx, query, to, reason, processedAt, id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s track of cancellation %d is not %s", domain.ErrStateConflict, track, id, from)
	}
	return nil
}

func (r *cancellationRepository) scanOne(row *sql.Row) (*domain.Cancellation, error) {
	c := &domain.Cancellation{}
	var rejectRenter, rejectOwner sql.NullString
	err := row.Scan(&c.ID, &c.BookingID, &c.Reason, &c.CancellationFee, &c.TotalRefundForRenter, &c.TotalRefundForOwner,
		&c.RefundStatusRenter, &c.RefundStatusOwner, &rejectRenter, &rejectOwner, &c.PriorStatus,
		&c.CancelRequestedAt, &c.OwnerApprovedCancelAt, &c.CancelledAt, &c.RefundProcessedAtRenter, &c.RefundProcessedAtOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.RejectReasonRenter = rejectRenter.String
	c.RejectReasonOwner = rejectOwner.String
	return c, nil
}
