package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT id, owner_id, name, price_per_day FROM vehicles WHERE id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&v.ID, &v.OwnerID, &v.Name, &v.PricePerDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
