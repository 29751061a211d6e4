package domain

// User carries the profile fields the booking engine needs. Account
// management and session issuance live in another service.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	LoyaltyPoints int64  `json:"loyalty_points"`
	DeviceToken   string `json:"device_token,omitempty"` // FCM registration token
}
