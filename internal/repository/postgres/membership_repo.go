package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventshare/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{
		DB: db,
	}
}

func (r *membershipRepository) GetLevel(ctx context.Context, eventID, userID string) (domain.AccessLevel, error) {
	query := `
		SELECT access_level
		FROM event_access
		WHERE event_id = $1 AND user_id = $2
	`
	var level domain.AccessLevel
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return level, nil
}

// Grant inserts a membership row if none exists. An existing row is returned
// unchanged: joining twice never overwrites a level an admin has since set.
func (r *membershipRepository) Grant(ctx context.Context, eventID, userID string, level domain.AccessLevel) (*domain.Membership, error) {
	insert := `
		INSERT INTO event_access (event_id, user_id, access_level, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING event_id, user_id, access_level, created_at
	`
	m := &domain.Membership{}
	err := r.DB.QueryRowContext(ctx, insert, eventID, userID, level, time.Now()).
		Scan(&m.EventID, &m.UserID, &m.AccessLevel, &m.CreatedAt)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Conflict: the row already existed, fetch it as-is.
	query := `
		SELECT event_id, user_id, access_level, created_at
		FROM event_access
		WHERE event_id = $1 AND user_id = $2
	`
	err = r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&m.EventID, &m.UserID, &m.AccessLevel, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *membershipRepository) SetLevel(ctx context.Context, eventID, userID string, level domain.AccessLevel) error {
	query := `
		UPDATE event_access
		SET access_level = $3
		WHERE event_id = $1 AND user_id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID, level)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *membershipRepository) Remove(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_access WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *membershipRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `
		SELECT a.user_id, u.name, u.email, a.access_level, a.created_at
		FROM event_access a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.access_level ASC, a.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p := &domain.Participant{}
		var name sql.NullString
		if err := rows.Scan(&p.UserID, &name, &p.Email, &p.AccessLevel, &p.JoinedAt); err != nil {
			return nil, err
		}
		p.Name = name.String
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
