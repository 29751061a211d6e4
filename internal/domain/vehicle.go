package domain

// Vehicle carries the listing fields the booking engine needs. Listing CRUD
// itself lives in another service.
type Vehicle struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	PricePerDay int64  `json:"price_per_day"`
}
