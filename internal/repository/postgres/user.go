package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	var deviceToken sql.NullString
	query := `SELECT id, name, email, loyalty_points, device_token FROM users WHERE id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.LoyaltyPoints, &deviceToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.DeviceToken = deviceToken.String
	return u, nil
}

func (r *userRepository) AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error {
	query := `UPDATE users SET loyalty_points = loyalty_points + $1 WHERE id = $2`
	res, err := q(ctx, r.db).ExecContext(ctx, query, points, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
