package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Get(ctx context.Context, provider string) (*domain.ProviderCredential, error) {
	c := &domain.ProviderCredential{}
	query := `SELECT provider, access_token, expires_at, updated_at FROM provider_credentials WHERE provider = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, provider).Scan(&c.Provider, &c.AccessToken, &c.ExpiresAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *domain.ProviderCredential) error {
	query := `INSERT INTO provider_credentials (provider, access_token, expires_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (provider) DO UPDATE SET access_token = $2, expires_at = $3, updated_at = $4`
	_, err := q(ctx, r.db).ExecContext(ctx, query, cred.Provider, cred.AccessToken, cred.ExpiresAt, time.Now())
	return err
}

func (r *credentialRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM provider_credentials WHERE expires_at < $1`
	res, err := q(ctx, r.db).ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
