package middleware

import (
	"context"
	"net/http"
	"strings"

	"PhotoGram/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const userIDKey contextKey = "userId"

// Auth 返回一个chi中间件：解析 Authorization 头里的 Bearer 令牌，
// 校验通过后把用户ID放进请求的 context。
// 下游 handler 用 UserID(ctx) 取出已认证的身份。
func Auth(users *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "缺少 Authorization 请求头")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondUnauthorized(w, "Authorization 请求头格式不正确")
				return
			}

			userID, err := users.ValidateToken(parts[1])
			if err != nil {
				respondUnauthorized(w, "令牌无效或已过期")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID 从 context 中取出已认证用户的ID。
// 只在 Auth 中间件之后的 handler 里调用，ok 为 false 说明路由配置有误。
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
