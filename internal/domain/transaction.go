package domain

import "time"

type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "DEPOSIT"
	TransactionTypeRental       TransactionType = "RENTAL"
	TransactionTypeCompensation TransactionType = "COMPENSATION"
	TransactionTypePayout       TransactionType = "PAYOUT"
	TransactionTypeRefund       TransactionType = "REFUND"
	TransactionTypeDebit        TransactionType = "DEBIT"
	TransactionTypeTrafficFine  TransactionType = "TRAFFIC_FINE"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

const (
	PaymentMethodOnline = "payos"
	PaymentMethodCash   = "cash"
	PaymentMethodSystem = "system"
)

// Transaction is one append-only ledger row. A nil FromUserID or ToUserID
// means the platform side. Completed rows are never mutated; corrections are
// new compensating rows (a DEBIT reversing a PAYOUT).
type Transaction struct {
	ID            int64             `json:"id"`
	BookingID     int64             `json:"booking_id"`
	FromUserID    *int64            `json:"from_user_id,omitempty"`
	ToUserID      *int64            `json:"to_user_id,omitempty"`
	Amount        int64             `json:"amount"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Note          string            `json:"note"`
	ProcessedAt   time.Time         `json:"processed_at"`
	CreatedAt     time.Time         `json:"created_at"`
}
