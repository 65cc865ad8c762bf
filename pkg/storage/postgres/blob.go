package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runetick/pkg/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobStore adapts a PostgresClient to storage.BlobStore.
type BlobStore struct {
	client *PostgresClient
}

func NewBlobStore(client *PostgresClient) *BlobStore {
	return &BlobStore{client: client}
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec BlobRecord
	err := s.client.DB.WithContext(ctx).
		Where("key = ?", key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	return rec.Data, nil
}

// Put inserts the blob or replaces the existing one.
func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	rec := &BlobRecord{Key: key, Data: data, UpdatedAt: time.Now()}

	tx := s.client.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(rec)
	if tx.Error != nil {
		return fmt.Errorf("put blob %s: %w", key, tx.Error)
	}
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	err := s.client.DB.WithContext(ctx).
		Where("key = ?", key).
		Delete(&BlobRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every blob whose key starts with prefix.
func (s *BlobStore) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	tx := s.client.DB.WithContext(ctx).
		Where("key LIKE ?", prefix+"%").
		Delete(&BlobRecord{})
	if tx.Error != nil {
		return 0, fmt.Errorf("delete blobs %s*: %w", prefix, tx.Error)
	}
	return tx.RowsAffected, nil
}
