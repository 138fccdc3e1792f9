package service

import (
	"PhotoGram/internal/models"
	"PhotoGram/pkg/database"
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhotoService 承载照片子系统的全部业务编排：创建、删除、查询、
// 改标题、点赞、评论和搜索。所有者校验在这里完成，存储细节在
// database.Store 后面。
type PhotoService struct {
	db database.Store
}

// NewPhotoService 创建照片服务实例，Store 在进程启动时构造一次并注入。
func NewPhotoService(db database.Store) *PhotoService {
	return &PhotoService{db: db}
}

// parsePhotoID 把URL里的十六进制字符串解析为 ObjectID。
// 解析失败与记录不存在同样返回 ErrNotFound，两种情况对外不区分。
func parsePhotoID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// getOwned 取出照片并校验 actor 是否为所有者。
// 先报不存在，再报无权限：404 的优先级高于 403。
func (s *PhotoService) getOwned(ctx context.Context, id string, actorID primitive.ObjectID) (*models.Photo, error) {
	oid, err := parsePhotoID(id)
	if err != nil {
		return nil, err
	}
	photo, err := s.db.Photos().GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("查询照片失败: %w", err)
	}
	if photo == nil {
		return nil, ErrNotFound
	}
	if photo.UserID != actorID {
		return nil, ErrAccessDenied
	}
	return photo, nil
}

// Create 为已认证用户创建一张照片。
// 创建者的展示名在此刻被快照到照片文档里，之后改名不会回写。
func (s *PhotoService) Create(ctx context.Context, title, image string, actorID primitive.ObjectID) (*models.Photo, error) {
	user, err := s.db.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	photo := &models.Photo{
		Image:    image,
		Title:    title,
		UserID:   user.ID,
		UserName: user.Name,
	}
	if err := s.db.Photos().Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("创建照片失败: %w", err)
	}

	slog.Info("照片已创建", "photoId", photo.ID.Hex(), "userId", user.ID.Hex())
	return photo, nil
}

// Delete 删除一张照片，只有所有者可以执行。
// 返回被删除照片的ID供调用方确认。
func (s *PhotoService) Delete(ctx context.Context, id string, actorID primitive.ObjectID) (primitive.ObjectID, error) {
	photo, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := s.db.Photos().Delete(ctx, photo.ID); err != nil {
		return primitive.NilObjectID, fmt.Errorf("删除照片失败: %w", err)
	}
	slog.Info("照片已删除", "photoId", photo.ID.Hex())
	return photo.ID, nil
}

// GetAll 返回所有照片，最新的在前。
func (s *PhotoService) GetAll(ctx context.Context) ([]models.Photo, error) {
	photos, err := s.db.Photos().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取照片列表失败: %w", err)
	}
	return photos, nil
}

// GetByID 按ID返回一张照片。
func (s *PhotoService) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	oid, err := parsePhotoID(id)
	if err != nil {
		return nil, err
	}
	photo, err := s.db.Photos().GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("查询照片失败: %w", err)
	}
	if photo == nil {
		return nil, ErrNotFound
	}
	return photo, nil
}

// GetByUser 返回指定用户的所有照片，最新的在前。
// ID不合法时没有任何照片能匹配，直接返回空列表而不是错误。
func (s *PhotoService) GetByUser(ctx context.Context, userID string) ([]models.Photo, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Photo{}, nil
	}
	photos, err := s.db.Photos().ListByUser(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("获取用户照片失败: %w", err)
	}
	return photos, nil
}

// UpdateTitle 修改照片标题，只有所有者可以执行。
// 标题之外的字段（图片引用、所有者、创建时间）保持不变。
func (s *PhotoService) UpdateTitle(ctx context.Context, id, title string, actorID primitive.ObjectID) (*models.Photo, error) {
	photo, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Photos().UpdateTitle(ctx, photo.ID, title); err != nil {
		return nil, fmt.Errorf("更新照片标题失败: %w", err)
	}
	photo.Title = title
	return photo, nil
}

// Like 给照片点赞。点赞是单向的：同一个 (用户, 照片) 只能点一次，
// 没有取消点赞的操作。重复点赞返回 ErrAlreadyLiked。
func (s *PhotoService) Like(ctx context.Context, id string, actorID primitive.ObjectID) (*models.Photo, error) {
	oid, err := parsePhotoID(id)
	if err != nil {
		return nil, err
	}
	photo, err := s.db.Photos().GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("查询照片失败: %w", err)
	}
	if photo == nil {
		return nil, ErrNotFound
	}

	// 存在性已确认，AddLike 未命中就只剩一种解释：已经赞过
	liked, err := s.db.Photos().AddLike(ctx, oid, actorID)
	if err != nil {
		return nil, fmt.Errorf("点赞失败: %w", err)
	}
	if !liked {
		return nil, ErrAlreadyLiked
	}

	photo.Likes = append(photo.Likes, actorID)
	return photo, nil
}

// Comment 在照片下追加一条评论。评论者的展示名和头像在此刻被快照，
// 评论只增不减，顺序即追加顺序。
func (s *PhotoService) Comment(ctx context.Context, id, text string, actorID primitive.ObjectID) (*models.Comment, error) {
	oid, err := parsePhotoID(id)
	if err != nil {
		return nil, err
	}
	photo, err := s.db.Photos().GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("查询照片失败: %w", err)
	}
	if photo == nil {
		return nil, ErrNotFound
	}

	user, err := s.db.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	comment := &models.Comment{
		Comment:   text,
		UserName:  user.Name,
		UserImage: user.ProfileImage,
		UserID:    user.ID,
	}
	if err := s.db.Photos().AppendComment(ctx, oid, comment); err != nil {
		return nil, fmt.Errorf("添加评论失败: %w", err)
	}
	return comment, nil
}

// Search 按标题做不区分大小写的子串搜索，空查询匹配所有照片。
// 没有命中时返回空列表，不是错误。
func (s *PhotoService) Search(ctx context.Context, query string) ([]models.Photo, error) {
	photos, err := s.db.Photos().SearchByTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("搜索照片失败: %w", err)
	}
	return photos, nil
}
