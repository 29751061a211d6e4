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

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, vehicle_id, renter_id, owner_id, total_amount, total_paid, traffic_fine_paid,
	 order_code, order_code_remaining, loyalty_points_used, start_date, end_date, status, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (vehicle_id, renter_id, owner_id, total_amount, total_paid, traffic_fine_paid,
	           loyalty_points_used, start_date, end_date, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at`
	now := time.Now()
	return q(ctx, r.db).QueryRowContext(ctx, query,
		b.VehicleID, b.RenterID, b.OwnerID, b.TotalAmount, b.TotalPaid, b.TrafficFinePaid,
		b.LoyaltyPointsUsed, b.StartDate, b.EndDate, b.Status, now, now,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) LockByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) GetByOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_code = $1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, orderCode))
}

func (r *bookingRepository) GetByRemainingOrderCode(ctx context.Context, orderCode int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_code_remaining = $1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, orderCode))
}

// UpdateStatus moves a booking along one status edge. The WHERE clause on the
// prior status makes this a compare-and-swap: a concurrent transition wins and
// this one fails with ErrStateConflict instead of overwriting it.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	if err := domain.ValidateTransition(from, to); err != nil {
		return err
	}
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := q(ctx, r.db).ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: booking %d is no longer %s", domain.ErrStateConflict, id, from)
	}
	return nil
}

func (r *bookingRepository) SetOrderCode(ctx context.Context, id int64, orderCode int64) error {
	query := `UPDATE bookings SET order_code = $1, updated_at = $2 WHERE id = $3`
	_, err := q(ctx, r.db).ExecContext(ctx, query, orderCode, time.Now(), id)
	return err
}

func (r *bookingRepository) SetRemainingOrderCode(ctx context.Context, id int64, orderCode int64) error {
	query := `UPDATE bookings SET order_code_remaining = $1, updated_at = $2 WHERE id = $3`
	_, err := q(ctx, r.db).ExecContext(ctx, query, orderCode, time.Now(), id)
	return err
}

func (r *bookingRepository) AddToTotalPaid(ctx context.Context, id int64, amount int64) error {
	query := `UPDATE bookings SET total_paid = total_paid + $1, updated_at = $2
	          WHERE id = $3 AND total_paid + $1 <= total_amount`
	res, err := q(ctx, r.db).ExecContext(ctx, query, amount, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: payment of %d would exceed the contracted amount of booking %d", domain.ErrStateConflict, amount, id)
	}
	return nil
}

func (r *bookingRepository) AddToTrafficFinePaid(ctx context.Context, id int64, amount int64) error {
	query := `UPDATE bookings SET traffic_fine_paid = traffic_fine_paid + $1, updated_at = $2 WHERE id = $3`
	_, err := q(ctx, r.db).ExecContext(ctx, query, amount, time.Now(), id)
	return err
}

func (r *bookingRepository) ListByStatusEndedBefore(ctx context.Context, status domain.BookingStatus, endedBefore time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND end_date < $2 ORDER BY end_date`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, status, endedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *bookingRepository) ListByStatusStartingWithin(ctx context.Context, status domain.BookingStatus, window time.Duration) ([]domain.Booking, error) {
	now := time.Now()
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND start_date BETWEEN $2 AND $3 ORDER BY start_date`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, status, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *bookingRepository) scanOne(row *sql.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.VehicleID, &b.RenterID, &b.OwnerID, &b.TotalAmount, &b.TotalPaid, &b.TrafficFinePaid,
		&b.OrderCode, &b.OrderCodeRemaining, &b.LoyaltyPointsUsed, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) scanMany(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.VehicleID, &b.RenterID, &b.OwnerID, &b.TotalAmount, &b.TotalPaid, &b.TrafficFinePaid,
			&b.OrderCode, &b.OrderCodeRemaining, &b.LoyaltyPointsUsed, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
