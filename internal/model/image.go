package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is the metadata row for an object stored in the bucket.
// Digest is the hex SHA-256 of the stored bytes and is unique per owner.
type Image struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_images_owner_digest,priority:1"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	BucketName string    `json:"-" gorm:"size:255;not null"`
	ObjectKey  string    `json:"-" gorm:"size:512;not null;uniqueIndex"`
	Digest     string    `json:"-" gorm:"type:char(64);not null;uniqueIndex:idx_images_owner_digest,priority:2"`
	UploadedAt time.Time `json:"upload_date" gorm:"autoCreateTime;index"`
}

// BeforeCreate sets UUID before creating the record.
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
