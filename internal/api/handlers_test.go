package api

import (
	"PhotoGram/config"
	"PhotoGram/internal/service"
	"PhotoGram/internal/testutil"
	"PhotoGram/pkg/logger"
	"PhotoGram/pkg/storage"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(logger.Discard())
	config.C = &config.Config{}
	config.C.Auth.JWTSecret = "test-secret"
	config.C.Auth.TokenTTL = time.Hour
	config.C.Uploads.MaxUploadSize = 10 << 20
	os.Exit(m.Run())
}

// newTestRouter 在内存存储和临时上传目录上搭一个完整的路由。
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := testutil.NewStore()
	blobs, err := storage.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	users := service.NewUserService(store, config.C)
	photos := service.NewPhotoService(store)
	return RegisterRoutes(photos, users, blobs)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerUser 通过API注册一个用户，返回令牌。
func registerUser(t *testing.T, router http.Handler, name string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

// uploadPhoto 通过API上传一张照片，返回照片ID。
func uploadPhoto(t *testing.T, router http.Handler, token, title string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	fw, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["id"].(string)
}

func TestPhotoLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	owner := registerUser(t, router, "alice")
	visitor := registerUser(t, router, "bob")

	photoID := uploadPhoto(t, router, owner, "Beach")

	// 列表里能看到刚上传的照片
	rec := doJSON(t, router, http.MethodGet, "/api/photos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Beach", list[0]["title"])
	assert.Equal(t, "alice", list[0]["userName"])

	// 点赞：第一次200，第二次422
	rec = doJSON(t, router, http.MethodPut, "/api/photos/like/"+photoID, visitor, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doJSON(t, router, http.MethodPut, "/api/photos/like/"+photoID, visitor, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// 非所有者改标题被拒绝
	rec = doJSON(t, router, http.MethodPut, "/api/photos/"+photoID, visitor, map[string]string{"title": "Hacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 所有者改标题成功
	rec = doJSON(t, router, http.MethodPut, "/api/photos/"+photoID, owner, map[string]string{"title": "Beach Day"})
	require.Equal(t, http.StatusOK, rec.Code)

	// 评论
	rec = doJSON(t, router, http.MethodPut, "/api/photos/comment/"+photoID, visitor, map[string]string{"comment": "好看！"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/photos/"+photoID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	photo := decodeBody(t, rec)
	assert.Equal(t, "Beach Day", photo["title"])
	comments := photo["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, "好看！", comments[0].(map[string]interface{})["comment"])
	assert.Equal(t, "bob", comments[0].(map[string]interface{})["userName"])

	// 非所有者删除被拒绝，所有者删除成功，之后404
	rec = doJSON(t, router, http.MethodDelete, "/api/photos/"+photoID, visitor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/api/photos/"+photoID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/photos/"+photoID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWritesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/photos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, router, http.MethodPut, "/api/photos/like/abc", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/api/photos/abc", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "alice")
	uploadPhoto(t, router, token, "Summer Vacation")
	uploadPhoto(t, router, token, "Winter")

	search := func(q string) []map[string]interface{} {
		rec := doJSON(t, router, http.MethodGet, "/api/photos/search?q="+q, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		return list
	}

	require.Len(t, search("VACATION"), 1)
	require.Len(t, search("mer"), 1)
	assert.Equal(t, "Summer Vacation", search("mer")[0]["title"])
	// 空查询匹配所有照片
	assert.Len(t, search(""), 2)
	assert.Empty(t, search("Autumn"))
}

func TestMalformedPhotoIDIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/photos/not-a-hex", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	router := newTestRouter(t)

	// 名字太短
	rec := doJSON(t, router, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "ab", "email": "a@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// 邮箱不合法
	rec = doJSON(t, router, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "alice", "email": "not-an-email", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// 重复注册同一邮箱
	registerUser(t, router, "alice")
	rec = doJSON(t, router, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "alice2", "email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginAndProfile(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice")

	rec := doJSON(t, router, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"].(string)

	rec = doJSON(t, router, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody(t, rec)
	assert.Equal(t, "alice", profile["name"])
	// 密码哈希绝不出现在响应里
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(t, router, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadedImageIsServed(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "alice")
	photoID := uploadPhoto(t, router, token, "Beach")

	rec := doJSON(t, router, http.MethodGet, "/api/photos/"+photoID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ref := decodeBody(t, rec)["image"].(string)
	require.True(t, strings.HasSuffix(ref, ".png"), ref)

	rec = doJSON(t, router, http.MethodGet, "/uploads/"+ref, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake-png-bytes", rec.Body.String())
}
