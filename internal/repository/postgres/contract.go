package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) repository.ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, rec *domain.ContractRecord) error {
	query := `INSERT INTO contract_records (booking_id, envelope_id, created_at) VALUES ($1, $2, $3) RETURNING id`
	return q(ctx, r.db).QueryRowContext(ctx, query, rec.BookingID, rec.EnvelopeID, time.Now()).Scan(&rec.ID)
}

func (r *contractRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.ContractRecord, error) {
	rec := &domain.ContractRecord{}
	query := `SELECT id, booking_id, envelope_id, created_at FROM contract_records WHERE booking_id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, bookingID).Scan(&rec.ID, &rec.BookingID, &rec.EnvelopeID, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
