package service

import (
	"PhotoGram/config"
	"PhotoGram/internal/models"
	"PhotoGram/pkg/database"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService 负责注册、登录和个人资料维护，同时是身份提供方：
// 签发和校验 Bearer 令牌，令牌的 subject 是用户ID。
type UserService struct {
	db  database.Store
	cfg *config.Config
}

func NewUserService(db database.Store, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// Register 创建新用户。密码用 bcrypt 哈希后落库，邮箱重复返回 ErrEmailInUse。
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
	}
	if err := s.db.Users().Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", fmt.Errorf("创建用户失败: %w", err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	slog.Info("用户已注册", "userId", user.ID.Hex())
	return user, token, nil
}

// Login 校验邮箱和密码，成功后签发令牌。
// 用户不存在与密码错误返回同一个错误，不给枚举邮箱的机会。
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.db.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetByID 按ID返回用户（公开资料，Password 字段不参与序列化）。
// ID不合法与用户不存在同样返回 ErrUserNotFound。
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.db.Users().GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfileInput 描述一次资料更新，nil 字段表示不修改。
type UpdateProfileInput struct {
	Name         *string
	Password     *string
	Bio          *string
	ProfileImage *string
}

// UpdateProfile 更新当前用户的资料。
// 注意：改名不会回写到已发照片/评论里的名字快照，这是刻意的设计。
func (s *UserService) UpdateProfile(ctx context.Context, actorID primitive.ObjectID, input UpdateProfileInput) (*models.User, error) {
	user, err := s.db.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("密码哈希失败: %w", err)
		}
		user.Password = string(hash)
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.ProfileImage != nil {
		user.ProfileImage = *input.ProfileImage
	}

	if err := s.db.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user, nil
}

// generateToken 签发一个HS256令牌，subject 为用户ID的十六进制形式。
func (s *UserService) generateToken(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验令牌并返回其中的用户ID。
// 中间件用它把请求头里的 Bearer 令牌换成 context 里的身份。
func (s *UserService) ValidateToken(tokenStr string) (primitive.ObjectID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("令牌无效: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return primitive.NilObjectID, errors.New("令牌缺少 subject")
	}
	oid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("令牌中的用户ID不合法: %w", err)
	}
	return oid, nil
}
