package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, booking_id, from_user_id, to_user_id, amount, type, status, payment_method, note, processed_at, created_at`

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (booking_id, from_user_id, to_user_id, amount, type, status, payment_method, note, processed_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if t.ProcessedAt.IsZero() {
		t.ProcessedAt = time.Now()
	}
	return q(ctx, r.db).QueryRowContext(ctx, query,
		t.BookingID, t.FromUserID, t.ToUserID, t.Amount, t.Type, t.Status, t.PaymentMethod, t.Note, t.ProcessedAt, time.Now(),
	).Scan(&t.ID)
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *transactionRepository) FindCompleted(ctx context.Context, bookingID int64, txType domain.TransactionType, amount int64, paymentMethod string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE booking_id = $1 AND type = $2 AND amount = $3 AND payment_method = $4 AND status = $5
	          LIMIT 1`
	return r.scanOne(q(ctx, r.db).QueryRowContext(ctx, query, bookingID, txType, amount, paymentMethod, domain.TransactionStatusCompleted))
}

func (r *transactionRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1 ORDER BY created_at`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.BookingID, &t.FromUserID, &t.ToUserID, &t.Amount, &t.Type, &t.Status,
			&t.PaymentMethod, &t.Note, &t.ProcessedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) scanOne(row *sql.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.BookingID, &t.FromUserID, &t.ToUserID, &t.Amount, &t.Type, &t.Status,
		&t.PaymentMethod, &t.Note, &t.ProcessedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
