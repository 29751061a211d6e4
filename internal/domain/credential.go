package domain

import "time"

// ProviderCredential is a persisted, TTL-stamped access token for an external
// provider. Holding it in the database instead of process memory means every
// instance refreshes lazily against the same row.
type ProviderCredential struct {
	Provider    string    `json:"provider"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Valid reports whether the token is still usable at the given instant,
// with a small safety margin for clock skew and request latency.
func (c *ProviderCredential) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Add(30*time.Second).Before(c.ExpiresAt)
}

// ContractRecord correlates a booking with its e-signature envelope. Its
// existence is the guard against creating duplicate envelopes.
type ContractRecord struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"booking_id"`
	EnvelopeID string    `json:"envelope_id"`
	CreatedAt  time.Time `json:"created_at"`
}
