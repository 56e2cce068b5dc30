package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "webapp/internal/errors"
	"webapp/internal/logging"
	"webapp/internal/model"
)

var (
	alice = &model.Account{ID: 1, Email: "alice@x.com", Verified: true}
	bob   = &model.Account{ID: 2, Email: "bob@x.com", Verified: true}
	pngA  = []byte("\x89PNG\r\n\x1a\nfirst image")
	pngB  = []byte("\x89PNG\r\n\x1a\nsecond image")
)

func newMemImageService() (ImageService, *memImageRepository, *memObjectStore) {
	repo := newMemImageRepository()
	store := newMemObjectStore()
	return NewImageService(repo, store, logging.Nop()), repo, store
}

func TestImageService_Upload_RejectsFileType(t *testing.T) {
	svc, _, store := newMemImageService()

	for _, name := range []string{"photo.gif", "photo", "archive.png.zip", "doc.PDF"} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), alice, name, pngA)
			assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
		})
	}
	assert.Equal(t, 0, store.count())
}

func TestImageService_Upload_AcceptsAllowedTypes(t *testing.T) {
	svc, _, _ := newMemImageService()

	for i, name := range []string{"a.png", "b.JPG", "c.jpeg"} {
		image, err := svc.Upload(context.Background(), alice, name, []byte{byte(i), 1, 2, 3})
		require.NoError(t, err, name)
		assert.Equal(t, name, image.FileName)
	}
}

func TestImageService_Upload_EmptyFile(t *testing.T) {
	svc, _, _ := newMemImageService()

	_, err := svc.Upload(context.Background(), alice, "a.png", nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyFile)
}

func TestImageService_Upload_DeduplicatesPerAccount(t *testing.T) {
	svc, repo, store := newMemImageService()
	ctx := context.Background()

	first, err := svc.Upload(ctx, alice, "cat.png", pngA)
	require.NoError(t, err)

	_, err = svc.Upload(ctx, alice, "cat-copy.png", pngA)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateImage)

	fromBob, err := svc.Upload(ctx, bob, "cat.png", pngA)
	require.NoError(t, err)

	other, err := svc.Upload(ctx, alice, "dog.png", pngB)
	require.NoError(t, err)

	assert.Equal(t, 3, store.count())
	assert.NotEqual(t, first.ObjectKey, fromBob.ObjectKey)
	assert.Contains(t, first.ObjectKey, "1/")
	assert.Contains(t, fromBob.ObjectKey, "2/")
	assert.Equal(t, first.Digest, fromBob.Digest)
	assert.NotEqual(t, first.Digest, other.Digest)

	sum := sha256.Sum256(pngA)
	assert.Equal(t, hex.EncodeToString(sum[:]), first.Digest)

	rows, _ := repo.ListByOwner(ctx, alice.ID)
	assert.Len(t, rows, 2)
}

func TestImageService_Upload_StorageFailure(t *testing.T) {
	repo := new(MockImageRepository)
	store := new(MockObjectStore)
	svc := NewImageService(repo, store, logging.Nop())

	repo.On("ExistsByDigest", mock.Anything, uint(1), mock.Anything).Return(false, nil)
	store.On("Put", mock.Anything, mock.Anything, pngA, "image/png").Return(errors.New("503 Slow Down"))

	_, err := svc.Upload(context.Background(), alice, "a.png", pngA)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImageService_Upload_InsertFailureRemovesObject(t *testing.T) {
	repo := new(MockImageRepository)
	store := new(MockObjectStore)
	svc := NewImageService(repo, store, logging.Nop())

	var key string
	repo.On("ExistsByDigest", mock.Anything, uint(1), mock.Anything).Return(false, nil)
	store.On("Put", mock.Anything, mock.Anything, pngA, "image/png").
		Run(func(args mock.Arguments) { key = args.String(1) }).
		Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	store.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Upload(context.Background(), alice, "a.png", pngA)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateImage)
	store.AssertCalled(t, "Delete", mock.Anything, key)
}

func TestImageService_Get(t *testing.T) {
	svc, _, _ := newMemImageService()
	ctx := context.Background()

	image, err := svc.Upload(ctx, alice, "cat.png", pngA)
	require.NoError(t, err)

	view, err := svc.Get(ctx, image.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, ImageView{
		FileName:   "cat.png",
		ID:         image.ID,
		URL:        image.URL,
		UploadDate: "2024-03-01",
		UserID:     alice.ID,
	}, *view)

	_, err = svc.Get(ctx, image.ID, bob)
	assert.ErrorIs(t, err, apperrors.ErrNotImageOwner)

	_, err = svc.Get(ctx, uuid.New(), alice)
	assert.ErrorIs(t, err, apperrors.ErrImageNotFound)
}

func TestImageService_List(t *testing.T) {
	svc, _, _ := newMemImageService()
	ctx := context.Background()

	_, err := svc.Upload(ctx, alice, "one.png", pngA)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, alice, "two.jpg", pngB)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, bob, "bob.png", pngA)
	require.NoError(t, err)

	views, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "one.png", views[0].FileName)
	assert.Equal(t, "two.jpg", views[1].FileName)
}

func TestImageService_Delete(t *testing.T) {
	svc, repo, store := newMemImageService()
	ctx := context.Background()

	image, err := svc.Upload(ctx, alice, "cat.png", pngA)
	require.NoError(t, err)

	t.Run("missing image", func(t *testing.T) {
		err := svc.Delete(ctx, uuid.New(), alice)
		assert.ErrorIs(t, err, apperrors.ErrImageNotFound)
		assert.Equal(t, 1, store.count())
	})

	t.Run("someone else's image", func(t *testing.T) {
		err := svc.Delete(ctx, image.ID, bob)
		assert.ErrorIs(t, err, apperrors.ErrNotImageOwner)
		assert.Equal(t, 1, store.count())
		_, err = repo.FindByID(ctx, image.ID)
		assert.NoError(t, err)
	})

	t.Run("owner", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, image.ID, alice))
		assert.Equal(t, 0, store.count())
		_, err := repo.FindByID(ctx, image.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("same content can be uploaded again", func(t *testing.T) {
		_, err := svc.Upload(ctx, alice, "cat.png", pngA)
		assert.NoError(t, err)
	})
}

func TestImageService_Delete_StorageFailureKeepsRow(t *testing.T) {
	repo := new(MockImageRepository)
	store := new(MockObjectStore)
	svc := NewImageService(repo, store, logging.Nop())

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).
		Return(&model.Image{ID: id, OwnerID: 1, ObjectKey: "1/x.png", UploadedAt: time.Now()}, nil)
	store.On("Delete", mock.Anything, "1/x.png").Return(errors.New("timeout"))

	err := svc.Delete(context.Background(), id, alice)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
