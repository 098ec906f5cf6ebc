package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventshare/internal/domain"
)

type credentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) domain.CredentialRepository {
	return &credentialRepository{DB: db}
}

func (r *credentialRepository) GetByUserID(ctx context.Context, userID string) (*domain.Credential, error) {
	query := `
		SELECT user_id, password_hash, refresh_token
		FROM user_auth
		WHERE user_id = $1
	`
	c := &domain.Credential{}
	var refreshToken sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &c.PasswordHash, &refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if refreshToken.Valid {
		c.RefreshToken = &refreshToken.String
	}
	return c, nil
}

// SetRefreshToken overwrites the stored refresh token. Passing nil clears it
// (logout); any previously issued refresh token then fails rotation as stale.
func (r *credentialRepository) SetRefreshToken(ctx context.Context, userID string, refreshToken *string) error {
	query := `
		UPDATE user_auth
		SET refresh_token = $2, updated_at = $3
		WHERE user_id = $1
	`
	var arg sql.NullString
	if refreshToken != nil {
		arg = sql.NullString{String: *refreshToken, Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, query, userID, arg, time.Now())
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *credentialRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE user_auth
		SET password_hash = $2, updated_at = $3
		WHERE user_id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, userID, passwordHash, time.Now())
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
