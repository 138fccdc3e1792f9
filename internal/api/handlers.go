// 文件: internal/api/handlers.go
package api

import (
	"PhotoGram/config"
	"PhotoGram/internal/middleware"
	"PhotoGram/internal/service"
	"PhotoGram/pkg/storage"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// APIHandlers 持有所有依赖
type APIHandlers struct {
	photos *service.PhotoService
	users  *service.UserService
	blobs  *storage.LocalBlobStore
}

// NewAPIHandlers 创建一个新的API处理器实例
func NewAPIHandlers(photos *service.PhotoService, users *service.UserService, blobs *storage.LocalBlobStore) *APIHandlers {
	return &APIHandlers{
		photos: photos,
		users:  users,
		blobs:  blobs,
	}
}

// --- 辅助函数 ---

// respondJSON 辅助函数，用于统一返回JSON响应
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError 辅助函数，用于统一返回错误信息
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// respondServiceError 把业务层的错误种类映射为HTTP状态码。
// 未识别的错误一律按存储故障处理，返回500并隐藏内部细节。
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyLiked):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrEmailInUse):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "服务器内部错误，请稍后再试")
	}
}

// --- 照片处理器 ---

// HandleCreatePhoto 处理照片上传：multipart表单带 title 和 image 文件。
// 图片内容交给 blob 存储，业务层只拿到生成的引用。
func (h *APIHandlers) HandleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	if err := r.ParseMultipartForm(config.C.Uploads.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "无法解析表单: "+err.Error())
		return
	}
	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "缺少 'title' 字段")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "缺少 'image' 文件")
		return
	}
	defer file.Close()

	imageRef, err := h.blobs.Save(file, header.Filename)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "保存图片失败")
		return
	}

	photo, err := h.photos.Create(r.Context(), title, imageRef, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

// HandleDeletePhoto 删除照片，只有所有者可以执行。
func (h *APIHandlers) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	id, err := h.photos.Delete(r.Context(), chi.URLParam(r, "photoID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":      id.Hex(),
		"message": "照片已删除",
	})
}

// HandleListPhotos 返回所有照片，最新的在前。
func (h *APIHandlers) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.GetAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// HandleGetPhoto 按ID返回一张照片。
func (h *APIHandlers) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.photos.GetByID(r.Context(), chi.URLParam(r, "photoID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// HandleListUserPhotos 返回指定用户的所有照片。
func (h *APIHandlers) HandleListUserPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.GetByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// HandleUpdatePhoto 修改照片标题，只有所有者可以执行。
func (h *APIHandlers) HandleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "无效的请求体: "+err.Error())
		return
	}
	if payload.Title == "" {
		respondError(w, http.StatusBadRequest, "缺少 'title' 字段")
		return
	}

	photo, err := h.photos.UpdateTitle(r.Context(), chi.URLParam(r, "photoID"), payload.Title, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"photo":   photo,
		"message": "照片已更新",
	})
}

// HandleLikePhoto 给照片点赞，重复点赞返回422。
func (h *APIHandlers) HandleLikePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	photo, err := h.photos.Like(r.Context(), chi.URLParam(r, "photoID"), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"photoId": photo.ID.Hex(),
		"userId":  userID.Hex(),
		"message": "已点赞",
	})
}

// HandleCommentPhoto 在照片下追加评论。
func (h *APIHandlers) HandleCommentPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	var payload struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "无效的请求体: "+err.Error())
		return
	}
	if payload.Comment == "" {
		respondError(w, http.StatusBadRequest, "缺少 'comment' 字段")
		return
	}

	comment, err := h.photos.Comment(r.Context(), chi.URLParam(r, "photoID"), payload.Comment, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"comment": comment,
		"message": "评论已添加",
	})
}

// HandleSearchPhotos 按标题搜索照片。空查询匹配所有照片。
func (h *APIHandlers) HandleSearchPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// HandleServeUpload 把 blob 引用对应的文件内容写回响应，
// 供前端 <img src="/uploads/..."> 使用。
func (h *APIHandlers) HandleServeUpload(w http.ResponseWriter, r *http.Request) {
	f, err := h.blobs.Open(chi.URLParam(r, "ref"))
	if err != nil {
		respondError(w, http.StatusNotFound, "文件未找到")
		return
	}
	defer f.Close()
	io.Copy(w, f)
}
