package domain

type NotificationType string

const (
	NotificationTypeBooking      NotificationType = "BOOKING"
	NotificationTypePayment      NotificationType = "PAYMENT"
	NotificationTypeCancellation NotificationType = "CANCELLATION"
	NotificationTypeRefund       NotificationType = "REFUND"
	NotificationTypeContract     NotificationType = "CONTRACT"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedOn string           `json:"created_on"`
}
