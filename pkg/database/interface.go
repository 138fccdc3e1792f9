package database

import (
	"PhotoGram/internal/models"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateEmail 在注册邮箱命中唯一索引时由 UserStore.Create 返回。
var ErrDuplicateEmail = errors.New("邮箱已被注册")

// Store 是一个顶层接口，它组合了所有特定数据模型的存储接口。
// 具体实现（MongoDB）在 pkg/database/mongo 中，业务层只依赖这里的契约。
type Store interface {
	Photos() PhotoStore
	Users() UserStore
	EnsureIndexes(ctx context.Context) error
	DropAllCollections(ctx context.Context) error
}

// PhotoStore 定义了所有与 Photo 模型相关的数据库操作。
// 查询方法在记录不存在时返回 (nil, nil)，由调用方决定如何呈现。
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error)

	// List 与 ListByUser 均按 createdAt 倒序返回（最新的在前）。
	List(ctx context.Context) ([]models.Photo, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Photo, error)

	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) error

	// AddLike 原子地把 userID 加入照片的 likes 集合。
	// 只有当 userID 尚未点过赞时更新才会发生；返回值表示这次调用
	// 是否真的写入了点赞。调用方必须先确认照片存在。
	AddLike(ctx context.Context, photoID, userID primitive.ObjectID) (liked bool, err error)

	// AppendComment 把评论追加到照片的 comments 数组末尾，顺序即追加顺序。
	AppendComment(ctx context.Context, photoID primitive.ObjectID, comment *models.Comment) error

	// SearchByTitle 按标题做不区分大小写的子串搜索；空查询匹配所有照片。
	SearchByTitle(ctx context.Context, titleQuery string) ([]models.Photo, error)

	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserStore 定义了所有与 User 模型相关的数据库操作。
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
