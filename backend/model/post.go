package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

// Post is the metadata record of one uploaded media item.
type Post struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Caption   string    `json:"caption" gorm:"type:text;not null"`
	URL       string    `json:"url" gorm:"size:255;not null"`
	FileType  string    `json:"file_type" gorm:"size:32;not null"`
	FileName  string    `json:"file_name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index;precision:6"`
}

func (Post) TableName() string {
	return "posts"
}

// NewPost holds the client and landing supplied fields of a post.
type NewPost struct {
	Caption  string
	URL      string
	FileType string
	FileName string
}

// PostStore is the persistence boundary of posts. Implementations assign the
// id and creation time on Create.
type PostStore interface {
	Create(ctx context.Context, p NewPost) (*Post, error)
	// ListAll returns every post, newest first.
	ListAll(ctx context.Context) ([]*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	// Delete removes the record only. It returns ErrPostNotFound when no row matched.
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormPostStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostStore(db *gorm.DB) PostStore {
	return NewPostStoreWithClock(db, time.Now)
}

// NewPostStoreWithClock is NewPostStore with a custom creation clock.
func NewPostStoreWithClock(db *gorm.DB, now func() time.Time) PostStore {
	return &gormPostStore{db: db, now: now}
}

func (s *gormPostStore) Create(ctx context.Context, p NewPost) (*Post, error) {
	post := &Post{
		ID:        uuid.New(),
		Caption:   p.Caption,
		URL:       p.URL,
		FileType:  p.FileType,
		FileName:  p.FileName,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *gormPostStore) ListAll(ctx context.Context) ([]*Post, error) {
	var posts []*Post
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *gormPostStore) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *gormPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
