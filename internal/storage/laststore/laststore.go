// Package laststore persists the raw bytes of the last opened database
// file so a restart can restore it transparently.
//
// Two tiers in primary/fallback order: a size-bounded fast store (base64
// key files) and a transactional bbolt store for files past the quota.
// At most one record exists across both tiers; saving to one tier clears
// the other's slot.
package laststore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// ErrQuotaExceeded is returned by the fast tier when the encoded payload
// would exceed its byte quota.
var ErrQuotaExceeded = errors.New("laststore: quota exceeded")

// Backend identifies which tier holds the persisted record.
type Backend string

// Available backends.
const (
	BackendFast Backend = "fast"
	BackendBolt Backend = "bolt"
)

// Record is the persisted file: raw bytes plus the original file name.
type Record struct {
	Bytes []byte
	Name  string
}

// Store is the two-tier persistence adapter.
type Store struct {
	fast *fastStore
	bolt *boltStore
}

// New opens a store rooted at dir. quotaBytes bounds the fast tier's
// encoded payload size; zero or negative disables the bound.
func New(dir string, quotaBytes int64) (*Store, error) {
	b, err := openBolt(filepath.Join(dir, "lastfile.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store: %w", err)
	}
	return &Store{
		fast: &fastStore{dir: filepath.Join(dir, "laststate"), quota: quotaBytes},
		bolt: b,
	}, nil
}

// Close releases the fallback store.
func (s *Store) Close() error {
	return s.bolt.close()
}

// Save persists data under the single well-known slot and reports which
// backend ultimately held it. The fast tier is attempted first; quota
// overflow or any other write failure falls back to the bolt tier. On
// success the other tier's slot is cleared so no stale copy survives; a
// failed clear is logged, never fatal.
func (s *Store) Save(ctx context.Context, data []byte, name string) (Backend, error) {
	if err := s.fast.save(data, name); err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			slog.WarnContext(ctx, "Fast store write failed, falling back", "err", err)
		}
		if err2 := s.bolt.save(data, name); err2 != nil {
			return "", fmt.Errorf("fallback store save failed: %w", errors.Join(err, err2))
		}
		if err := s.fast.clear(); err != nil {
			slog.WarnContext(ctx, "Failed to clear fast store slot", "err", err)
		}
		return BackendBolt, nil
	}
	if err := s.bolt.clear(); err != nil {
		slog.WarnContext(ctx, "Failed to clear fallback store slot", "err", err)
	}
	return BackendFast, nil
}

// Restore returns the persisted record, checking the fast tier first,
// or nil when neither tier holds one. Read failures are swallowed and
// treated as "no record"; Restore never blocks startup.
func (s *Store) Restore(ctx context.Context) *Record {
	if rec, err := s.fast.load(); err != nil {
		slog.DebugContext(ctx, "Fast store restore failed", "err", err)
	} else if rec != nil {
		return rec
	}
	if rec, err := s.bolt.load(); err != nil {
		slog.DebugContext(ctx, "Fallback store restore failed", "err", err)
	} else if rec != nil {
		return rec
	}
	return nil
}
