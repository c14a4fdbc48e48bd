package services

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist tracks revoked-but-not-yet-expired token ids (jti).
// Entries are only meaningful until their expiry: a token past its exp
// already fails signature-level validation, so stale entries are pruned
// lazily on lookup and opportunistically on insert.
//
// The in-memory implementation is process-local and does not survive a
// restart; multi-instance deployments should use the Redis backend,
// which satisfies the same contract.
type TokenBlacklist interface {
	// Add revokes the token id until expiresAt. Adding an already-revoked
	// id is a no-op overwrite.
	Add(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether the id is currently revoked. An entry
	// whose expiry has passed counts as absent.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Size sweeps and reports the number of live entries.
	Size(ctx context.Context) (int, error)

	// Sweep removes expired entries. Safe to call at any time.
	Sweep(ctx context.Context) error
}

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlacklist returns the in-process TokenBlacklist. All methods
// are safe for concurrent use: logout-while-validating races are routine
// under load.
func NewMemoryBlacklist() TokenBlacklist {
	return &memoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *memoryBlacklist) Add(_ context.Context, jti string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[jti] = expiresAt
	b.sweepLocked()
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(expiresAt) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

func (b *memoryBlacklist) Size(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()
	return len(b.entries), nil
}

func (b *memoryBlacklist) Sweep(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()
	return nil
}

// Clear empties the blacklist. Testing aid.
func (b *memoryBlacklist) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]time.Time)
}

func (b *memoryBlacklist) sweepLocked() {
	now := b.now()
	for jti, expiresAt := range b.entries {
		if !now.Before(expiresAt) {
			delete(b.entries, jti)
		}
	}
}
