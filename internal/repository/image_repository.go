package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"webapp/internal/model"
)

// ImageRepository defines image metadata persistence operations.
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Image, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Image, error)
	ExistsByDigest(ctx context.Context, ownerID uint, digest string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Image, error) {
	var images []model.Image
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// ExistsByDigest reports whether the owner already stores content with this digest.
// The lookup is served by the (owner_id, digest) unique index.
func (r *imageRepository) ExistsByDigest(ctx context.Context, ownerID uint, digest string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Image{}).
		Where("owner_id = ? AND digest = ?", ownerID, digest).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
