package domain

import (
	"context"
	"io"
	"time"
)

// Photo is a picture uploaded to an event. The bytes live in the blob store;
// only the opaque URL is recorded here.
// swagger:model Photo
type Photo struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UploaderID string    `json:"uploader_id"`
	BlobURL    string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

// BlobStore stores photo bytes addressed by opaque URL. The application
// never inspects blob content; it only stores and deletes by URL.
type BlobStore interface {
	Put(ctx context.Context, body io.Reader, contentType, suggestedName string) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// PhotoRepository defines the interface for photo metadata storage.
type PhotoRepository interface {
	Create(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Photo, error)
	ListByUploader(ctx context.Context, userID string) ([]*Photo, error)
	// ListByMemberEvents returns all photos across every event the user is
	// a member of, newest first.
	ListByMemberEvents(ctx context.Context, userID string) ([]*Photo, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// PhotoService guards photo operations against the membership ledger:
// viewers can look but not upload, and only the uploader or an event admin
// may delete.
type PhotoService interface {
	Upload(ctx context.Context, eventID, userID string, body io.Reader, contentType, filename string) (*Photo, error)
	GetByID(ctx context.Context, photoID, userID string) (*Photo, error)
	ListByEvent(ctx context.Context, eventID, userID string) ([]*Photo, error)
	CountByEvent(ctx context.Context, eventID, userID string) (int, error)
	ListMine(ctx context.Context, userID string) ([]*Photo, error)
	// Gallery returns all photos from every event the user belongs to.
	Gallery(ctx context.Context, userID string) ([]*Photo, error)
	Delete(ctx context.Context, photoID, userID string) error
}
