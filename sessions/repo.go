package sessions

import "context"

// Repo persists token records. Get returns errors.ErrSessionNotFound for
// unknown or expired ids. Delete of an unknown id is not an error.
type Repo interface {
	Get(ctx context.Context, sessionID string) (*TokenRecord, error)
	Upsert(ctx context.Context, record *TokenRecord) error
	Delete(ctx context.Context, sessionID string) error
}
