package route

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediafeed/backend/common"
	"mediafeed/backend/model"
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	originalSQLitePath := common.SQLitePath
	originalRedis := common.RedisEnabled
	common.SQLitePath = filepath.Join(t.TempDir(), "route_test.db")
	common.RedisEnabled = false
	assert.NoError(t, model.InitDB())
	t.Cleanup(func() {
		_ = model.CloseDB()
		common.SQLitePath = originalSQLitePath
		common.RedisEnabled = originalRedis
	})

	auth, err := service.NewAuthService(service.AuthConfig{
		Secret:         "test-jwt-secret-for-route-tests",
		AccessLifetime: time.Hour,
	}, nil)
	assert.NoError(t, err)

	lander := service.NewLander(t.TempDir(), "/uploads")
	r := gin.New()
	SetRouter(r, Services{
		Posts:  service.NewPostService(model.NewPostStore(model.DB), lander, true),
		Lander: lander,
		Auth:   auth,
		Users:  service.NewUserManager(auth, nil),
	})
	return r, auth
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r *gin.Engine, filename, content, caption string) map[string]string {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, _ = part.Write([]byte(content))
	assert.NoError(t, writer.WriteField("caption", caption))
	assert.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/upload_file", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var post map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func feed(t *testing.T, r *gin.Engine) []map[string]string {
	t.Helper()
	req, _ := http.NewRequest("GET", "/feed", nil)
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Posts []map[string]string `json:"posts"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Posts
}

func TestUploadThenFeedThenServe(t *testing.T) {
	r, _ := setupRouter(t)

	post := upload(t, r, "holiday.PNG", "png bytes", "hi")
	posts := feed(t, r)
	if assert.Len(t, posts, 1) {
		assert.Equal(t, "hi", posts[0]["caption"])
		assert.Equal(t, "png", posts[0]["file_type"])
		assert.True(t, strings.HasPrefix(posts[0]["url"], "/uploads/"))
		assert.Equal(t, post["id"], posts[0]["id"])
	}

	req, _ := http.NewRequest("GET", post["url"], nil)
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png bytes", w.Body.String())
}

func TestUploadWithoutExtension(t *testing.T) {
	r, _ := setupRouter(t)
	post := upload(t, r, "README", "text", "")
	assert.Equal(t, "bin", post["file_type"])
}

func TestFeedOrderAndDelete(t *testing.T) {
	r, _ := setupRouter(t)
	a := upload(t, r, "a.txt", "A", "A")
	upload(t, r, "b.txt", "B", "B")
	upload(t, r, "c.txt", "C", "C")

	posts := feed(t, r)
	var captions []string
	for _, p := range posts {
		captions = append(captions, p["caption"])
	}
	assert.Equal(t, []string{"C", "B", "A"}, captions)

	req, _ := http.NewRequest("DELETE", "/post/"+a["id"], nil)
	assert.Equal(t, http.StatusOK, do(r, req).Code)
	assert.Len(t, feed(t, r), 2)

	req, _ = http.NewRequest("DELETE", "/post/"+a["id"], nil)
	assert.Equal(t, http.StatusNotFound, do(r, req).Code)

	req, _ = http.NewRequest("DELETE", "/post/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, do(r, req).Code)

	req, _ = http.NewRequest("GET", a["url"], nil)
	assert.Equal(t, http.StatusNotFound, do(r, req).Code)
}

func TestUserRoutesRequireActiveUser(t *testing.T) {
	r, auth := setupRouter(t)

	req, _ := http.NewRequest("GET", "/users/me", nil)
	w := do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Unauthorized"}`, w.Body.String())

	inactive := &model.User{Email: "sleepy@example.com", Password: "secret123"}
	assert.NoError(t, inactive.Insert())
	token, err := auth.IssueAccessToken(inactive)
	assert.NoError(t, err)
	req, _ = http.NewRequest("GET", "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)
}

func TestRegisterLoginMe(t *testing.T) {
	r, _ := setupRouter(t)

	body, _ := json.Marshal(map[string]string{"email": "new@example.com", "password": "secret123"})
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusCreated, do(r, req).Code)

	form := url.Values{"username": {"new@example.com"}, "password": {"secret123"}}
	req, _ = http.NewRequest("POST", "/auth/jwt/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var tokenResp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))

	req, _ = http.NewRequest("GET", "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp["access_token"])
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"new@example.com"`)

	req, _ = http.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp["access_token"])
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)
}

func TestUploadsHidesPartialFiles(t *testing.T) {
	dir := t.TempDir()
	r := gin.New()
	setUploadRouter(r, service.NewLander(dir, "/uploads"))

	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".landing-123456"), []byte("partial"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "0123abcd.txt"), []byte("done"), 0o644))

	req, _ := http.NewRequest("GET", "/uploads/.landing-123456", nil)
	w := do(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "partial")

	req, _ = http.NewRequest("GET", "/uploads/0123abcd.txt", nil)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", w.Body.String())
}
