package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mediafeed/backend/common"
	"mediafeed/backend/model"

	"github.com/google/uuid"
)

var (
	ErrInvalidIdentifier = errors.New("invalid post identifier")
	ErrPostNotFound      = model.ErrPostNotFound
	ErrEmptyFile         = errors.New("uploaded file is empty")
)

// StorageError wraps a file system or database failure during upload or delete.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PostService composes the Lander and the Post Store.
type PostService struct {
	store             model.PostStore
	lander            *Lander
	deleteRemovesFile bool
}

func NewPostService(store model.PostStore, lander *Lander, deleteRemovesFile bool) *PostService {
	return &PostService{
		store:             store,
		lander:            lander,
		deleteRemovesFile: deleteRemovesFile,
	}
}

// Upload lands the file and records it. The landed file is removed again
// when the record cannot be written.
func (s *PostService) Upload(ctx context.Context, r io.Reader, filename string, caption string) (*model.Post, error) {
	landed, err := s.lander.Land(r, filename)
	if err != nil {
		return nil, &StorageError{Op: "land file", Err: err}
	}
	if landed.Size == 0 {
		s.compensate(landed)
		return nil, ErrEmptyFile
	}

	post, err := s.store.Create(ctx, model.NewPost{
		Caption:  caption,
		URL:      landed.URL,
		FileType: landed.FileType,
		FileName: landed.FileName,
	})
	if err != nil {
		s.compensate(landed)
		return nil, &StorageError{Op: "create post", Err: err}
	}

	common.SysLog("post created",
		"post_id", post.ID.String(),
		"storage_name", landed.StorageName,
		"bytes", landed.Size,
		"file_type", landed.FileType,
	)
	return post, nil
}

func (s *PostService) compensate(landed *LandedFile) {
	if err := s.lander.Remove(landed.StorageName); err != nil {
		common.SysError("failed to remove orphaned upload", "storage_name", landed.StorageName, "err", err)
	}
}

// Feed returns all posts newest first.
func (s *PostService) Feed(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list posts", Err: err}
	}
	return posts, nil
}

// Delete removes the post named by rawID and, when configured, its backing file.
func (s *PostService) Delete(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, rawID)
	}

	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return err
		}
		return &StorageError{Op: "get post", Err: err}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return err
		}
		return &StorageError{Op: "delete post", Err: err}
	}
	common.SysLog("post deleted", "post_id", id.String())

	if !s.deleteRemovesFile {
		return nil
	}
	storageName, ok := s.lander.StorageNameFromURL(post.URL)
	if !ok {
		common.SysError("post url does not point into the upload directory", "post_id", id.String(), "url", post.URL)
		return nil
	}
	if err := s.lander.Remove(storageName); err != nil {
		// the record is gone; a leftover file is only logged
		common.SysError("failed to remove post file", "post_id", id.String(), "storage_name", storageName, "err", err)
	}
	return nil
}
