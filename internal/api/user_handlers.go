// 文件: internal/api/user_handlers.go
package api

import (
	"PhotoGram/config"
	"PhotoGram/internal/middleware"
	"PhotoGram/internal/service"
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
)

// --- 用户处理器 ---

// HandleRegister 注册新用户并直接返回登录令牌。
func (h *APIHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "无效的请求体: "+err.Error())
		return
	}
	if msg, ok := validateRegister(payload.Name, payload.Email, payload.Password); !ok {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	user, token, err := h.users.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID.Hex(),
		"token": token,
	})
}

// HandleLogin 校验邮箱和密码，签发令牌。
func (h *APIHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "无效的请求体: "+err.Error())
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusUnprocessableEntity, "邮箱和密码都是必填的")
		return
	}

	user, token, err := h.users.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":           user.ID.Hex(),
		"name":         user.Name,
		"profileImage": user.ProfileImage,
		"token":        token,
	})
}

// HandleProfile 返回当前登录用户的完整资料。
func (h *APIHandlers) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID.Hex())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// HandleGetUser 返回任意用户的公开资料（Password 不参与序列化）。
func (h *APIHandlers) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// HandleUpdateUser 更新当前用户的资料：multipart表单，
// name/password/bio 都是可选字段，profileImage 是可选的文件。
func (h *APIHandlers) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "未认证的请求")
		return
	}

	if err := r.ParseMultipartForm(config.C.Uploads.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "无法解析表单: "+err.Error())
		return
	}

	var input service.UpdateProfileInput
	if v := r.FormValue("name"); v != "" {
		if len(v) < 3 {
			respondError(w, http.StatusUnprocessableEntity, "名字至少需要3个字符")
			return
		}
		input.Name = &v
	}
	if v := r.FormValue("password"); v != "" {
		if len(v) < 5 {
			respondError(w, http.StatusUnprocessableEntity, "密码至少需要5个字符")
			return
		}
		input.Password = &v
	}
	if v := r.FormValue("bio"); v != "" {
		input.Bio = &v
	}
	if file, header, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()
		ref, err := h.blobs.Save(file, header.Filename)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "保存头像失败")
			return
		}
		input.ProfileImage = &ref
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// validateRegister 检查注册字段，返回第一条校验失败的消息。
func validateRegister(name, email, password string) (string, bool) {
	if len(name) < 3 {
		return "名字至少需要3个字符", false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "请输入有效的邮箱", false
	}
	if len(password) < 5 {
		return "密码至少需要5个字符", false
	}
	return "", true
}
