package postgres

import "time"

// BlobRecord is one stored user document.
type BlobRecord struct {
	Key  string `gorm:"type:text;primaryKey"`
	Data []byte `gorm:"type:bytea;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_blob_updated_at"`
}

// TableName overrides the default table name for GORM.
func (BlobRecord) TableName() string {
	return "user_blob"
}
