package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "webapp/internal/errors"
	"webapp/internal/logging"
	"webapp/internal/model"
	"webapp/internal/repository"
	"webapp/internal/storage"
)

const uploadDateLayout = "2006-01-02"

// allowedImageTypes maps accepted extensions to the stored content type.
var allowedImageTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// ImageView is the read model returned for a stored image.
type ImageView struct {
	FileName   string    `json:"file_name"`
	ID         uuid.UUID `json:"id"`
	URL        string    `json:"url"`
	UploadDate string    `json:"upload_date"`
	UserID     uint      `json:"user_id"`
}

// ImageService handles the image lifecycle of an authenticated account.
type ImageService interface {
	Upload(ctx context.Context, owner *model.Account, fileName string, data []byte) (*model.Image, error)
	Get(ctx context.Context, imageID uuid.UUID, requester *model.Account) (*ImageView, error)
	List(ctx context.Context, requester *model.Account) ([]ImageView, error)
	Delete(ctx context.Context, imageID uuid.UUID, requester *model.Account) error
}

type imageService struct {
	repo  repository.ImageRepository
	store storage.ObjectStore
	log   logging.Logger
}

// NewImageService creates a new image service.
func NewImageService(repo repository.ImageRepository, store storage.ObjectStore, log logging.Logger) ImageService {
	return &imageService{repo: repo, store: store, log: log}
}

// Upload stores data for owner unless owner already has identical content.
func (s *imageService) Upload(ctx context.Context, owner *model.Account, fileName string, data []byte) (*model.Image, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		return nil, apperrors.ErrUnsupportedFileType
	}
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	exists, err := s.repo.ExistsByDigest(ctx, owner.ID, digest)
	if err != nil {
		return nil, dbError("check duplicate image", err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateImage
	}

	key := fmt.Sprintf("%d/%s.%s", owner.ID, uuid.New(), ext)
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		s.log.Error(ctx, "object upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	image := &model.Image{
		OwnerID:    owner.ID,
		FileName:   filepath.Base(fileName),
		URL:        s.store.URL(key),
		BucketName: s.store.Bucket(),
		ObjectKey:  key,
		Digest:     digest,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn(ctx, "orphaned object after failed insert", "key", key, "error", delErr)
		}
		// a concurrent upload of the same content won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateImage
		}
		return nil, dbError("create image", err)
	}

	s.log.Info(ctx, "image uploaded", "image_id", image.ID, "owner_id", owner.ID)
	return image, nil
}

// Get returns the image when requester owns it.
func (s *imageService) Get(ctx context.Context, imageID uuid.UUID, requester *model.Account) (*ImageView, error) {
	image, err := s.findOwned(ctx, imageID, requester)
	if err != nil {
		return nil, err
	}
	view := toImageView(image)
	return &view, nil
}

// List returns every image owned by requester, oldest first.
func (s *imageService) List(ctx context.Context, requester *model.Account) ([]ImageView, error) {
	images, err := s.repo.ListByOwner(ctx, requester.ID)
	if err != nil {
		return nil, dbError("list images", err)
	}
	views := make([]ImageView, 0, len(images))
	for i := range images {
		views = append(views, toImageView(&images[i]))
	}
	return views, nil
}

// Delete removes the object and then its metadata row.
func (s *imageService) Delete(ctx context.Context, imageID uuid.UUID, requester *model.Account) error {
	image, err := s.findOwned(ctx, imageID, requester)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, image.ObjectKey); err != nil {
		s.log.Error(ctx, "object delete failed", "key", image.ObjectKey, "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	if err := s.repo.Delete(ctx, image.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrImageNotFound
		}
		return dbError("delete image", err)
	}

	s.log.Info(ctx, "image deleted", "image_id", image.ID, "owner_id", requester.ID)
	return nil
}

// findOwned loads the image and checks ownership. Existence is checked before
// any field of the row is read.
func (s *imageService) findOwned(ctx context.Context, imageID uuid.UUID, requester *model.Account) (*model.Image, error) {
	image, err := s.repo.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrImageNotFound
		}
		return nil, dbError("find image", err)
	}
	if image == nil {
		return nil, apperrors.ErrImageNotFound
	}
	if requester == nil || image.OwnerID != requester.ID {
		return nil, apperrors.ErrNotImageOwner
	}
	return image, nil
}

func toImageView(image *model.Image) ImageView {
	return ImageView{
		FileName:   image.FileName,
		ID:         image.ID,
		URL:        image.URL,
		UploadDate: image.UploadedAt.Format(uploadDateLayout),
		UserID:     image.OwnerID,
	}
}
