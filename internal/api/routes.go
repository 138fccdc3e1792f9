// 文件: internal/api/routes.go
package api

import (
	"PhotoGram/internal/middleware"
	"PhotoGram/internal/service"
	"PhotoGram/pkg/storage"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes 注册所有API路由
func RegisterRoutes(photos *service.PhotoService, users *service.UserService, blobs *storage.LocalBlobStore) *chi.Mux {
	r := chi.NewRouter()

	// --- 中间件 (Middleware) ---
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// 配置CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := NewAPIHandlers(photos, users, blobs)
	requireAuth := middleware.Auth(users)

	// --- API路由 ---
	r.Route("/api/photos", func(r chi.Router) {
		// 公开读取
		r.Get("/", handlers.HandleListPhotos)
		r.Get("/search", handlers.HandleSearchPhotos)
		r.Get("/user/{userID}", handlers.HandleListUserPhotos)
		r.Get("/{photoID}", handlers.HandleGetPhoto)

		// 需要登录的写操作
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", handlers.HandleCreatePhoto)
			r.Delete("/{photoID}", handlers.HandleDeletePhoto)
			r.Put("/{photoID}", handlers.HandleUpdatePhoto)
			r.Put("/like/{photoID}", handlers.HandleLikePhoto)
			r.Put("/comment/{photoID}", handlers.HandleCommentPhoto)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", handlers.HandleRegister)
		r.Post("/login", handlers.HandleLogin)
		r.Get("/{userID}", handlers.HandleGetUser)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", handlers.HandleProfile)
			r.Put("/", handlers.HandleUpdateUser)
		})
	})

	// 上传的图片按 blob 引用对外提供
	r.Get("/uploads/{ref}", handlers.HandleServeUpload)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
