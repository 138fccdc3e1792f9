package service

import (
	"PhotoGram/config"
	"PhotoGram/internal/testutil"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testAuthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	return cfg
}

func TestRegisterAndLogin(t *testing.T) {
	store := testutil.NewStore()
	svc := NewUserService(store, testAuthConfig())
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.NotEmpty(t, token)
	// 密码以 bcrypt 哈希落库
	assert.NotEqual(t, "secret1", user.Password)

	// 令牌能换回注册用户的ID
	id, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	got, loginToken, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := testutil.NewStore()
	svc := NewUserService(store, testAuthConfig())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice2", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

// 用户不存在与密码错误返回同一个错误。
func TestLoginInvalidCredentials(t *testing.T) {
	store := testutil.NewStore()
	svc := NewUserService(store, testAuthConfig())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewUserService(testutil.NewStore(), testAuthConfig())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	// 用不同密钥签出来的令牌不被接受
	otherCfg := testAuthConfig()
	otherCfg.Auth.JWTSecret = "other-secret"
	other := NewUserService(testutil.NewStore(), otherCfg)
	token, err := other.generateToken(primitive.NewObjectID())
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	store := testutil.NewStore()
	svc := NewUserService(store, testAuthConfig())
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	name := "alice-new"
	bio := "摄影爱好者"
	password := "newsecret"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		Name:     &name,
		Bio:      &bio,
		Password: &password,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice-new", updated.Name)
	assert.Equal(t, "摄影爱好者", updated.Bio)

	// 新密码生效，旧密码失效
	_, _, err = svc.Login(ctx, "alice@example.com", "newsecret")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByIDMalformed(t *testing.T) {
	svc := NewUserService(testutil.NewStore(), testAuthConfig())

	_, err := svc.GetByID(context.Background(), "not-a-hex")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.GetByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
