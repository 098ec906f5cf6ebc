package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventshare/internal/domain"
)

type photoRepository struct {
	DB *sql.DB
}

func NewPhotoRepository(db *sql.DB) domain.PhotoRepository {
	return &photoRepository{
		DB: db,
	}
}

func (r *photoRepository) Create(ctx context.Context, p *domain.Photo) error {
	query := `
		INSERT INTO photos (event_id, uploaded_by, image_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.EventID, p.UploaderID, p.BlobURL, p.CreatedAt).Scan(&p.ID)
}

func (r *photoRepository) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	query := `
		SELECT id, event_id, uploaded_by, image_url, created_at
		FROM photos
		WHERE id = $1
	`
	p := &domain.Photo{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.EventID, &p.UploaderID, &p.BlobURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *photoRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Photo, error) {
	query := `
		SELECT id, event_id, uploaded_by, image_url, created_at
		FROM photos
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, eventID)
}

func (r *photoRepository) ListByUploader(ctx context.Context, userID string) ([]*domain.Photo, error) {
	query := `
		SELECT id, event_id, uploaded_by, image_url, created_at
		FROM photos
		WHERE uploaded_by = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *photoRepository) ListByMemberEvents(ctx context.Context, userID string) ([]*domain.Photo, error) {
	query := `
		SELECT p.id, p.event_id, p.uploaded_by, p.image_url, p.created_at
		FROM photos p
		INNER JOIN event_access a ON a.event_id = p.event_id
		WHERE a.user_id = $1
		ORDER BY p.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *photoRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.Photo, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	photos := make([]*domain.Photo, 0)
	for rows.Next() {
		p := &domain.Photo{}
		if err := rows.Scan(&p.ID, &p.EventID, &p.UploaderID, &p.BlobURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *photoRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM photos WHERE event_id = $1`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *photoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
