package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/moto-session/internal/errors"
)

type memoryEntry struct {
	record    *TokenRecord
	expiresAt time.Time
}

// InMemoryRepo keeps records in process memory. Every read or write
// restarts a record's idle timer; records idle for longer than idleTTL are
// treated as absent and removed on access.
type InMemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	idleTTL  time.Duration
	nowTime  func() time.Time
}

type InMemoryOption func(*InMemoryRepo)

// WithRepoNowTime sets the clock used for idle expiry (primarily for testing)
func WithRepoNowTime(nowFunc func() time.Time) InMemoryOption {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory session repository. An idleTTL of
// zero keeps records until they are deleted.
func NewInMemoryRepo(idleTTL time.Duration, options ...InMemoryOption) *InMemoryRepo {
	r := &InMemoryRepo{
		sessions: make(map[string]memoryEntry),
		idleTTL:  idleTTL,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Upsert creates or updates a record and restarts its idle timer
func (r *InMemoryRepo) Upsert(_ context.Context, record *TokenRecord) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	if record.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[record.ID] = memoryEntry{
		record:    record.Clone(),
		expiresAt: r.nowTime().Add(r.idleTTL),
	}
	return nil
}

// Get retrieves a copy of the record and restarts its idle timer
func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (*TokenRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}

	now := r.nowTime()
	if r.idleTTL > 0 {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, sessionID)
			return nil, apperrors.ErrSessionNotFound
		}
		entry.expiresAt = now.Add(r.idleTTL)
		r.sessions[sessionID] = entry
	}

	return entry.record.Clone(), nil
}

// Delete removes a record
func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// Len returns the number of stored records, expired or not.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
