package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventshare/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// CreateWithOwner inserts the event and the creator's admin membership in
// one transaction: a concurrent reader either sees both rows or neither.
// A unique violation (invitation token collision) surfaces as ErrConflict
// so the caller can regenerate and retry.
func (r *eventRepository) CreateWithOwner(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	eventQuery := `
		INSERT INTO events (title, description, date, creator_id, invitation_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var desc sql.NullString
	if e.Description != nil {
		desc = sql.NullString{String: *e.Description, Valid: true}
	}
	err = tx.QueryRowContext(ctx, eventQuery, e.Title, desc, e.Date, e.CreatorID, e.InvitationToken, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}

	accessQuery := `
		INSERT INTO event_access (event_id, user_id, access_level, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, accessQuery, e.ID, e.CreatorID, domain.AccessAdmin, e.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, description, date, creator_id, invitation_token, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByInvitationToken(ctx context.Context, token string) (*domain.Event, error) {
	query := `
		SELECT id, title, description, date, creator_id, invitation_token, created_at, updated_at
		FROM events
		WHERE invitation_token = $1
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, token))
}

func (r *eventRepository) scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var desc sql.NullString
	err := row.Scan(&e.ID, &e.Title, &desc, &e.Date, &e.CreatorID, &e.InvitationToken, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	return e, nil
}

func (r *eventRepository) ListByMember(ctx context.Context, userID string) ([]*domain.EventWithAccess, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.creator_id, e.invitation_token, e.created_at, e.updated_at, a.access_level
		FROM events e
		INNER JOIN event_access a ON a.event_id = e.id
		WHERE a.user_id = $1
		ORDER BY e.date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.EventWithAccess, 0)
	for rows.Next() {
		e := &domain.Event{}
		var desc sql.NullString
		var level domain.AccessLevel
		if err := rows.Scan(&e.ID, &e.Title, &desc, &e.Date, &e.CreatorID, &e.InvitationToken, &e.CreatedAt, &e.UpdatedAt, &level); err != nil {
			return nil, err
		}
		if desc.Valid {
			e.Description = &desc.String
		}
		events = append(events, &domain.EventWithAccess{Event: e, AccessLevel: level})
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *patch.Title)
		n++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *patch.Description)
		n++
	}
	if patch.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *patch.Date)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING id, title, description, date, creator_id, invitation_token, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) SetInvitationToken(ctx context.Context, eventID, token string) error {
	query := `
		UPDATE events
		SET invitation_token = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, token)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the event and everything scoped to it in one
// transaction: photo rows first, then memberships, then the event row.
// deleteBlob is called with each photo's URL while the transaction is open;
// a stray blob is acceptable collateral, an un-deleted event is not, so the
// callback cannot abort the cascade.
func (r *eventRepository) DeleteCascade(ctx context.Context, eventID string, deleteBlob func(url string)) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT image_url FROM photos WHERE event_id = $1`, eventID)
	if err != nil {
		return err
	}
	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			rows.Close()
			return err
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if deleteBlob != nil {
		for _, url := range urls {
			deleteBlob(url)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_access WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}
