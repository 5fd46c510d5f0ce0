package sessionstore

import (
	"context"
	"errors"
	"time"

	"surveychat/internal/model"
)

var (
	ErrNotFound         = errors.New("session not found in store")
	ErrAlreadyExists    = errors.New("session already exists")
	ErrVersionConflict  = errors.New("session version conflict")
	ErrInvalidConfig    = errors.New("invalid store configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
)

// Store is the key-value contract the session service depends on. A
// session record is read and written whole; UpdateMessages is the one
// partial write and is conditioned on the record version so a lost
// concurrent append surfaces as ErrVersionConflict instead of silently
// dropping a turn.
type Store interface {
	// Get retrieves a session by id. Returns (nil, nil) when absent.
	Get(ctx context.Context, sessionID string) (*model.Session, error)

	// Put persists a brand-new session whole, setting Version to 1.
	// Returns ErrAlreadyExists if the id is taken.
	Put(ctx context.Context, session *model.Session) error

	// UpdateMessages overwrites the messages and updated_at fields of an
	// existing session, conditioned on version matching the stored record.
	UpdateMessages(ctx context.Context, sessionID string, messages []model.Message, updatedAt time.Time, version int64) error

	// CountByOwner scans the store for sessions owned by ownerID. Used
	// only for quota counting at creation time.
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	Close() error
}
