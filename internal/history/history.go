// Package history persists the most recent query/response pairs and the user
// profile in the key-value store.
//
// The history list lives under a single key and every write is a full
// read-modify-write of that list. Two overlapping Appends can lose one of the
// items; the store provides no guard against that.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/comigor/jargone-go/internal/logger"
	"github.com/comigor/jargone-go/internal/storage"
)

const (
	// Key is the storage key of the history list.
	Key = "history"
	// BackupKey receives a history value that could not be read as a list.
	BackupKey = "history_backup"
	// MaxItems caps the list; older items are dropped on append.
	MaxItems = 50
)

// ErrNotFound is returned by Find when no item has the requested id.
var ErrNotFound = errors.New("history item not found")

// Store reads and writes the history list.
type Store struct {
	kv  storage.Store
	now func() time.Time
}

// New returns a history store backed by kv.
func New(kv storage.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// List returns all items, newest first. Items that cannot be decoded are
// skipped, and a value that is not a list at all is logged and treated as
// empty. Neither is removed from storage.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	entries, _, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(entries))
	for i, entry := range entries {
		var item Item
		if err := json.Unmarshal(entry, &item); err != nil {
			logger.L.Warn("skipping unreadable history item", "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Append prepends item and truncates the list to MaxItems. A zero ID or
// Timestamp is filled from the current time. The stored item is returned.
//
// Stored entries are carried over as they are, including ones List skips. A
// value that is not a list is copied to BackupKey before a new list is started.
func (s *Store) Append(ctx context.Context, item Item) (Item, error) {
	entries, corrupt, err := s.entries(ctx)
	if err != nil {
		return Item{}, err
	}
	if corrupt != nil {
		if err := s.kv.Set(ctx, BackupKey, corrupt); err != nil {
			return Item{}, fmt.Errorf("back up history: %w", err)
		}
		logger.L.Warn("history was not a valid list; backed up and starting fresh", "backup_key", BackupKey)
	}

	now := s.now()
	if item.ID == 0 {
		item.ID = now.UnixMilli()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = now.UTC()
	}
	encoded, err := json.Marshal(item)
	if err != nil {
		return Item{}, fmt.Errorf("encode history item: %w", err)
	}

	entries = append([]json.RawMessage{encoded}, entries...)
	if len(entries) > MaxItems {
		entries = entries[:MaxItems]
	}
	if err := s.write(ctx, entries); err != nil {
		return Item{}, err
	}
	logger.L.Debug("history item saved", "id", item.ID, "count", len(entries))
	return item, nil
}

// Find returns the newest item with the given id.
func (s *Store) Find(ctx context.Context, id int64) (Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return Item{}, err
	}
	item, ok := lo.Find(items, func(it Item) bool { return it.ID == id })
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return item, nil
}

// Clear removes the whole list.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// entries returns the stored list with each item left undecoded. When the
// stored value is not a JSON list, entries is nil and corrupt holds the value.
func (s *Store) entries(ctx context.Context) (entries []json.RawMessage, corrupt []byte, err error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, nil, fmt.Errorf("read history: %w", err)
	}
	if !ok {
		return nil, nil, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.L.Warn("history is not a valid list; treating as empty", "error", err)
		return nil, raw, nil
	}
	return entries, nil, nil
}

func (s *Store) write(ctx context.Context, entries []json.RawMessage) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
