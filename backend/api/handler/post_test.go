package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediafeed/backend/common"
	"mediafeed/backend/model"
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupDB points both stores at a fresh SQLite file.
func setupDB(t *testing.T) {
	t.Helper()
	originalSQLitePath := common.SQLitePath
	originalRedis := common.RedisEnabled
	common.SQLitePath = filepath.Join(t.TempDir(), "handler_test.db")
	common.RedisEnabled = false
	assert.NoError(t, model.InitDB())
	t.Cleanup(func() {
		_ = model.CloseDB()
		common.SQLitePath = originalSQLitePath
		common.RedisEnabled = originalRedis
	})
}

func setupPostRouter(t *testing.T, store model.PostStore) (*gin.Engine, string) {
	t.Helper()
	uploadDir := t.TempDir()
	posts := service.NewPostService(store, service.NewLander(uploadDir, "/uploads"), true)
	h := NewPostHandler(posts)

	r := gin.New()
	r.GET("/", Root)
	r.POST("/upload_file", h.UploadFile)
	r.GET("/feed", h.GetFeed)
	r.DELETE("/post/:post_id", h.DeletePost)
	return r, uploadDir
}

func multipartUpload(t *testing.T, filename string, content []byte, caption *string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		assert.NoError(t, err)
		_, err = part.Write(content)
		assert.NoError(t, err)
	}
	if caption != nil {
		assert.NoError(t, writer.WriteField("caption", *caption))
	}
	assert.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/upload_file", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string {
	return &s
}

func TestRoot(t *testing.T) {
	r, _ := setupPostRouter(t, nil)
	req, _ := http.NewRequest("GET", "/", nil)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func TestUploadFile(t *testing.T) {
	setupDB(t)
	r, uploadDir := setupPostRouter(t, model.NewPostStore(model.DB))

	w := serve(r, multipartUpload(t, "Photo.JPG", []byte("jpeg bytes"), strPtr("hi")))
	assert.Equal(t, http.StatusOK, w.Code)

	var post PostResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	_, err := uuid.Parse(post.ID)
	assert.NoError(t, err)
	assert.Equal(t, "hi", post.Caption)
	assert.Equal(t, "jpg", post.FileType)
	assert.Equal(t, "Photo.JPG", post.FileName)
	assert.True(t, strings.HasPrefix(post.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(post.URL, ".jpg"))
	assert.True(t, strings.HasSuffix(post.CreatedAt, "Z"))

	stored, err := os.ReadFile(filepath.Join(uploadDir, strings.TrimPrefix(post.URL, "/uploads/")))
	assert.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(stored))
}

func TestUploadFile_CaptionOptional(t *testing.T) {
	setupDB(t)
	r, _ := setupPostRouter(t, model.NewPostStore(model.DB))

	w := serve(r, multipartUpload(t, "notes", []byte("plain"), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var post PostResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "", post.Caption)
	assert.Equal(t, "bin", post.FileType)
}

func TestUploadFile_Rejections(t *testing.T) {
	setupDB(t)
	r, uploadDir := setupPostRouter(t, model.NewPostStore(model.DB))

	w := serve(r, multipartUpload(t, "", nil, strPtr("no file")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"A file is required"}`, w.Body.String())

	w = serve(r, multipartUpload(t, "empty.png", []byte{}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"The uploaded file is empty"}`, w.Body.String())

	entries, err := os.ReadDir(uploadDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

// failingStore fails every write and read.
type failingStore struct{}

var errStoreDown = errors.New("database is locked")

func (failingStore) Create(context.Context, model.NewPost) (*model.Post, error) {
	return nil, errStoreDown
}

func (failingStore) ListAll(context.Context) ([]*model.Post, error) {
	return nil, errStoreDown
}

func (failingStore) GetByID(context.Context, uuid.UUID) (*model.Post, error) {
	return nil, errStoreDown
}

func (failingStore) Delete(context.Context, uuid.UUID) error {
	return errStoreDown
}

func TestUploadFile_StorageFailure(t *testing.T) {
	r, uploadDir := setupPostRouter(t, failingStore{})

	w := serve(r, multipartUpload(t, "a.txt", []byte("data"), strPtr("x")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Upload failed: create post: database is locked"}`, w.Body.String())

	entries, err := os.ReadDir(uploadDir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "landed file must be removed when the record cannot be written")

	req, _ := http.NewRequest("GET", "/feed", nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load feed")
}

func TestGetFeed_NewestFirst(t *testing.T) {
	setupDB(t)
	r, _ := setupPostRouter(t, model.NewPostStore(model.DB))

	req, _ := http.NewRequest("GET", "/feed", nil)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())

	for _, caption := range []string{"A", "B", "C"} {
		w := serve(r, multipartUpload(t, caption+".txt", []byte(caption), strPtr(caption)))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req, _ = http.NewRequest("GET", "/feed", nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var feed struct {
		Posts []PostResponse `json:"posts"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	if assert.Len(t, feed.Posts, 3) {
		assert.Equal(t, "C", feed.Posts[0].Caption)
		assert.Equal(t, "B", feed.Posts[1].Caption)
		assert.Equal(t, "A", feed.Posts[2].Caption)
	}
}

func TestDeletePost(t *testing.T) {
	setupDB(t)
	r, uploadDir := setupPostRouter(t, model.NewPostStore(model.DB))

	w := serve(r, multipartUpload(t, "clip.mp4", []byte("video"), strPtr("clip")))
	assert.Equal(t, http.StatusOK, w.Code)
	var post PostResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))

	req, _ := http.NewRequest("DELETE", "/post/"+post.ID, nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"detail":"Post deleted successfully"}`, w.Body.String())

	_, err := os.Stat(filepath.Join(uploadDir, strings.TrimPrefix(post.URL, "/uploads/")))
	assert.True(t, os.IsNotExist(err))

	req, _ = http.NewRequest("DELETE", "/post/"+post.ID, nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Post not found"}`, w.Body.String())

	req, _ = http.NewRequest("DELETE", "/post/not-a-uuid", nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid post ID"}`, w.Body.String())
}

func TestDeletePost_Translated(t *testing.T) {
	setupDB(t)
	posts := service.NewPostService(model.NewPostStore(model.DB), service.NewLander(t.TempDir(), "/uploads"), true)
	h := NewPostHandler(posts)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("lang", "zh-CN")
		c.Next()
	})
	r.DELETE("/post/:post_id", h.DeletePost)

	req, _ := http.NewRequest("DELETE", "/post/"+uuid.NewString(), nil)
	w := serve(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"帖子未找到"}`, w.Body.String())
}
