// Package userstore keeps per-user settings, trade logs and watchlists as
// JSON documents in a blob store.
package userstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"runetick/pkg/storage"

	"go.uber.org/zap"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrLogNotFound           = errors.New("log not found")
	ErrWatchlistItemNotFound = errors.New("watchlist item not found")
)

const (
	settingsFile  = "settings.json"
	logsFile      = "logs.json"
	watchlistFile = "watchlist.json"
	betaKey       = "beta_users.json"
)

type Store struct {
	blobs storage.BlobStore
	locks *keyLocks
	log   *zap.Logger
	now   func() time.Time
}

func New(blobs storage.BlobStore, log *zap.Logger) *Store {
	return &Store{
		blobs: blobs,
		locks: newKeyLocks(),
		log:   log.Named("userstore"),
		now:   time.Now,
	}
}

func userKey(uid, file string) string {
	return "users/" + uid + "/" + file
}

// load decodes the document at key into dst and reports whether it exists.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
