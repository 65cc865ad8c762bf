package userstore

import (
	"context"
	"slices"
)

// AddToWatchlist adds itemID to the watchlist of uid. Adding an item twice is a no-op.
func (s *Store) AddToWatchlist(ctx context.Context, uid string, itemID int64) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	items, err := s.watchlist(ctx, uid)
	if err != nil {
		return err
	}
	if slices.Contains(items, itemID) {
		return nil
	}
	return s.save(ctx, userKey(uid, watchlistFile), append(items, itemID))
}

func (s *Store) Watchlist(ctx context.Context, uid string) ([]int64, error) {
	return s.watchlist(ctx, uid)
}

func (s *Store) RemoveFromWatchlist(ctx context.Context, uid string, itemID int64) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	items, err := s.watchlist(ctx, uid)
	if err != nil {
		return err
	}
	i := slices.Index(items, itemID)
	if i < 0 {
		return ErrWatchlistItemNotFound
	}
	return s.save(ctx, userKey(uid, watchlistFile), slices.Delete(items, i, i+1))
}

func (s *Store) watchlist(ctx context.Context, uid string) ([]int64, error) {
	items := []int64{}
	if _, err := s.load(ctx, userKey(uid, watchlistFile), &items); err != nil {
		return nil, err
	}
	return items, nil
}
