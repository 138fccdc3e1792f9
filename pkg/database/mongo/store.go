package mongo

import (
	"PhotoGram/config"
	"PhotoGram/internal/models"
	"PhotoGram/pkg/database"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store 是 database.Store 接口的MongoDB实现。
type Store struct {
	db     *mongo.Database
	photos *photoStore
	users  *userStore
}

// 确保 Store 实现了 database.Store 接口 (编译时检查)
var _ database.Store = (*Store)(nil)

// photoStore 封装了与 "photos" 集合相关的所有操作。
type photoStore struct {
	coll *mongo.Collection
}

// userStore 封装了与 "users" 集合相关的所有操作。
type userStore struct {
	coll *mongo.Collection
}

// NewStore 创建并返回一个新的 Store 实例，并建立与MongoDB的连接。
// 整个进程只调用一次，返回的 Store 被显式注入到各个 service 中。
func NewStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	slog.Info("正在连接到 MongoDB...", "uri", cfg.Database.URI)
	clientCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.Database.URI)
	client, err := mongo.Connect(clientCtx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(clientCtx, nil); err != nil {
		return nil, err
	}
	slog.Info("MongoDB 连接成功")

	db := client.Database(cfg.Database.Name)
	store := &Store{
		db:     db,
		photos: &photoStore{coll: db.Collection("photos")},
		users:  &userStore{coll: db.Collection("users")},
	}
	return store, nil
}

func (s *Store) Photos() database.PhotoStore {
	return s.photos
}

func (s *Store) Users() database.UserStore {
	return s.users
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	slog.Info("正在确保数据库索引存在...")
	photoIndexes := []mongo.IndexModel{
		// 列表页和按用户查询都按 createdAt 倒序，给排序键建索引
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_createdat"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_userid_createdat"),
		},
	}
	if _, err := s.photos.coll.Indexes().CreateMany(ctx, photoIndexes); err != nil {
		slog.Error("为 photos 集合创建索引失败", "error", err)
		return err
	}
	slog.Info("Photos 集合索引已验证/创建。")

	userIndexes := []mongo.IndexModel{
		// 邮箱是登录凭证，必须唯一
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_email_unique"),
		},
	}
	if _, err := s.users.coll.Indexes().CreateMany(ctx, userIndexes); err != nil {
		slog.Error("为 users 集合创建索引失败", "error", err)
		return err
	}
	slog.Info("Users 集合索引已验证/创建。")
	return nil
}

// --- photoStore 方法实现 ---

func (p *photoStore) Create(ctx context.Context, photo *models.Photo) error {
	photo.CreatedAt = time.Now()
	photo.UpdatedAt = time.Now()
	if photo.ID.IsZero() {
		photo.ID = primitive.NewObjectID()
	}
	// likes 和 comments 以空数组落库，避免后续 $addToSet/$push 落在 null 上
	if photo.Likes == nil {
		photo.Likes = []primitive.ObjectID{}
	}
	if photo.Comments == nil {
		photo.Comments = []models.Comment{}
	}
	_, err := p.coll.InsertOne(ctx, photo)
	return err
}

func (p *photoStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var photo models.Photo
	err := p.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

// List 返回所有照片，最新的在前。
func (p *photoStore) List(ctx context.Context) ([]models.Photo, error) {
	return p.find(ctx, bson.M{})
}

// ListByUser 返回指定用户的所有照片，最新的在前。
func (p *photoStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Photo, error) {
	return p.find(ctx, bson.M{"userId": userID})
}

// SearchByTitle 按标题进行不区分大小写的模糊搜索。
// 使用 primitive.Regex 来安全地构建正则表达式，QuoteMeta 会转义
// 查询字符串中的所有特殊正则字符，防止注入。空查询匹配所有标题。
func (p *photoStore) SearchByTitle(ctx context.Context, titleQuery string) ([]models.Photo, error) {
	filter := bson.M{"title": bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(titleQuery), Options: "i"}}}
	return p.find(ctx, filter)
}

// find 是列表类查询的公共实现，统一按 createdAt 倒序。
func (p *photoStore) find(ctx context.Context, filter bson.M) ([]models.Photo, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := p.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	photos := []models.Photo{}
	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// UpdateTitle 只修改标题和 updatedAt，照片的其他字段不可变。
func (p *photoStore) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"title": title, "updatedAt": time.Now()}}
	_, err := p.coll.UpdateOne(ctx, filter, update)
	return err
}

// AddLike 在一次数据库命令里完成“不存在才加入”的判断和写入。
// 过滤条件带上 likes $ne userID，使得已点过赞时 MatchedCount 为 0，
// 并发的两次点赞也只会有一次真正写入，不需要进程内加锁。
func (p *photoStore) AddLike(ctx context.Context, photoID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": photoID, "likes": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	res, err := p.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// AppendComment 用 $push 把评论追加到数组末尾。
// MongoDB 对单文档的数组追加是原子且有序的，comments 的顺序即追加顺序。
func (p *photoStore) AppendComment(ctx context.Context, photoID primitive.ObjectID, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = time.Now()

	filter := bson.M{"_id": photoID}
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := p.coll.UpdateOne(ctx, filter, update)
	return err
}

func (p *photoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := p.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// --- userStore 方法实现 ---

func (u *userStore) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := u.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		// 邮箱唯一索引冲突，转换为存储层的哨兵错误，业务层用 errors.Is 判断
		return database.ErrDuplicateEmail
	}
	return err
}

func (u *userStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (u *userStore) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": bson.M{
		"name":         user.Name,
		"password":     user.Password,
		"profileImage": user.ProfileImage,
		"bio":          user.Bio,
		"updatedAt":    user.UpdatedAt,
	}}
	_, err := u.coll.UpdateOne(ctx, filter, update)
	return err
}

// DropAllCollections 删除当前数据库中的所有已知集合，主要用于测试环境的重置。
func (s *Store) DropAllCollections(ctx context.Context) error {
	slog.Warn("正在删除所有集合...", "database", s.db.Name())
	if err := s.photos.coll.Drop(ctx); err != nil {
		slog.Error("删除 photos 集合失败", "error", err)
		// 即使出错也继续尝试删除其他集合
	}
	if err := s.users.coll.Drop(ctx); err != nil {
		slog.Error("删除 users 集合失败", "error", err)
		return err
	}
	slog.Info("所有集合已成功删除。")
	return nil
}
