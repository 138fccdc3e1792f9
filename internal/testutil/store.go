package testutil

import (
	"PhotoGram/internal/models"
	"PhotoGram/pkg/database"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store 是 database.Store 的内存实现，行为上模拟MongoDB：
// 查不到返回 (nil, nil)、列表按 createdAt 倒序、AddLike 带条件判断、
// 标题搜索不区分大小写。返回的文档都是副本，调用方改不到“库里”的数据。
type Store struct {
	photos *fakePhotoStore
	users  *fakeUserStore
}

func NewStore() *Store {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return &Store{
		photos: &fakePhotoStore{docs: map[primitive.ObjectID]*models.Photo{}, clock: clock},
		users:  &fakeUserStore{docs: map[primitive.ObjectID]*models.User{}, clock: clock},
	}
}

var _ database.Store = (*Store)(nil)

func (s *Store) Photos() database.PhotoStore { return s.photos }
func (s *Store) Users() database.UserStore   { return s.users }

func (s *Store) EnsureIndexes(ctx context.Context) error { return nil }

func (s *Store) DropAllCollections(ctx context.Context) error {
	s.photos.docs = map[primitive.ObjectID]*models.Photo{}
	s.users.docs = map[primitive.ObjectID]*models.User{}
	return nil
}

// fakeClock 每次取时间都前进一毫秒，保证 createdAt 严格递增，
// 排序相关的断言才是确定性的。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// --- fakePhotoStore ---

type fakePhotoStore struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]*models.Photo
	clock *fakeClock
}

func (f *fakePhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if photo.ID.IsZero() {
		photo.ID = primitive.NewObjectID()
	}
	photo.CreatedAt = f.clock.next()
	photo.UpdatedAt = photo.CreatedAt
	if photo.Likes == nil {
		photo.Likes = []primitive.ObjectID{}
	}
	if photo.Comments == nil {
		photo.Comments = []models.Comment{}
	}
	f.docs[photo.ID] = copyPhoto(photo)
	return nil
}

func (f *fakePhotoStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	photo, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return copyPhoto(photo), nil
}

func (f *fakePhotoStore) List(ctx context.Context) ([]models.Photo, error) {
	return f.find(func(*models.Photo) bool { return true }), nil
}

func (f *fakePhotoStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Photo, error) {
	return f.find(func(p *models.Photo) bool { return p.UserID == userID }), nil
}

func (f *fakePhotoStore) SearchByTitle(ctx context.Context, titleQuery string) ([]models.Photo, error) {
	q := strings.ToLower(titleQuery)
	return f.find(func(p *models.Photo) bool {
		return strings.Contains(strings.ToLower(p.Title), q)
	}), nil
}

func (f *fakePhotoStore) find(match func(*models.Photo) bool) []models.Photo {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.Photo{}
	for _, photo := range f.docs {
		if match(photo) {
			result = append(result, *copyPhoto(photo))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (f *fakePhotoStore) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if photo, ok := f.docs[id]; ok {
		photo.Title = title
		photo.UpdatedAt = f.clock.next()
	}
	return nil
}

func (f *fakePhotoStore) AddLike(ctx context.Context, photoID, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	photo, ok := f.docs[photoID]
	if !ok {
		return false, nil
	}
	for _, id := range photo.Likes {
		if id == userID {
			// 已点过赞，模拟 $ne 过滤条件未命中
			return false, nil
		}
	}
	photo.Likes = append(photo.Likes, userID)
	photo.UpdatedAt = f.clock.next()
	return true, nil
}

func (f *fakePhotoStore) AppendComment(ctx context.Context, photoID primitive.ObjectID, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = f.clock.next()
	if photo, ok := f.docs[photoID]; ok {
		photo.Comments = append(photo.Comments, *comment)
		photo.UpdatedAt = comment.CreatedAt
	}
	return nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func copyPhoto(p *models.Photo) *models.Photo {
	cp := *p
	cp.Likes = append([]primitive.ObjectID{}, p.Likes...)
	cp.Comments = append([]models.Comment{}, p.Comments...)
	return &cp
}

// --- fakeUserStore ---

type fakeUserStore struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]*models.User
	clock *fakeClock
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.docs {
		if u.Email == user.Email {
			// 模拟邮箱唯一索引
			return database.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = f.clock.next()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.docs[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.docs {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.docs[user.ID]; ok {
		existing.Name = user.Name
		existing.Password = user.Password
		existing.ProfileImage = user.ProfileImage
		existing.Bio = user.Bio
		existing.UpdatedAt = f.clock.next()
	}
	return nil
}
