package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"webapp/internal/model"
	"webapp/internal/notify"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) MarkVerified(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockImageRepository is a mock implementation of ImageRepository.
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, image *model.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Image, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageRepository) ExistsByDigest(ctx context.Context, ownerID uint, digest string) (bool, error) {
	args := m.Called(ctx, ownerID, digest)
	return args.Bool(0), args.Error(1)
}

func (m *MockImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of storage.ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) URL(key string) string {
	return "https://images.s3.us-east-1.amazonaws.com/" + key
}

func (m *MockObjectStore) Bucket() string {
	return "images"
}

// MockPublisher is a mock implementation of notify.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishVerification(ctx context.Context, msg notify.VerificationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Consume(ctx context.Context, tokenID string, ttl time.Duration) bool {
	args := m.Called(ctx, tokenID, ttl)
	return args.Bool(0)
}

func (m *MockTokenStore) Release(ctx context.Context, tokenID string) {
	m.Called(ctx, tokenID)
}

// memTokenStore records consumed token ids the way the Redis ledger does.
type memTokenStore struct {
	mu   sync.Mutex
	used map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{used: make(map[string]bool)}
}

func (s *memTokenStore) Consume(_ context.Context, tokenID string, _ time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used[tokenID] {
		return false
	}
	s.used[tokenID] = true
	return true
}

func (s *memTokenStore) Release(_ context.Context, tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.used, tokenID)
}

// memProfileCache is an in-memory ProfileCache storing JSON like Redis does.
type memProfileCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemProfileCache() *memProfileCache {
	return &memProfileCache{entries: make(map[string][]byte)}
}

func (c *memProfileCache) GetJSON(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	return ok && json.Unmarshal(raw, dst) == nil
}

func (c *memProfileCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, _ := json.Marshal(value)
	c.entries[key] = raw
}

func (c *memProfileCache) AddJSON(_ context.Context, key string, value any, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	raw, _ := json.Marshal(value)
	c.entries[key] = raw
	return true
}

func (c *memProfileCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// memImageRepository keeps rows in memory and enforces the (owner, digest)
// and object key uniqueness the database would.
type memImageRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Image
	seq  int
}

func newMemImageRepository() *memImageRepository {
	return &memImageRepository{rows: make(map[uuid.UUID]model.Image)}
}

func (r *memImageRepository) Create(ctx context.Context, image *model.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if (row.OwnerID == image.OwnerID && row.Digest == image.Digest) || row.ObjectKey == image.ObjectKey {
			return gorm.ErrDuplicatedKey
		}
	}
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	r.seq++
	image.UploadedAt = time.Date(2024, 3, 1, 10, r.seq, 0, 0, time.UTC)
	r.rows[image.ID] = *image
	return nil
}

func (r *memImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *memImageRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Image
	for _, row := range r.rows {
		if row.OwnerID == ownerID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r *memImageRepository) ExistsByDigest(ctx context.Context, ownerID uint, digest string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.OwnerID == ownerID && row.Digest == digest {
			return true, nil
		}
	}
	return false, nil
}

func (r *memImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

// memObjectStore is an in-memory bucket.
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), body...)
	return nil
}

func (s *memObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) URL(key string) string {
	return "https://images.s3.us-east-1.amazonaws.com/" + key
}

func (s *memObjectStore) Bucket() string {
	return "images"
}

func (s *memObjectStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
