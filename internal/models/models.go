package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Timestamps 结构体嵌入到其他模型中，用于追踪创建和更新时间。
// 这种方式遵循了 "Don't Repeat Yourself" (DRY) 原则。
type Timestamps struct {
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// User 代表一个注册用户，对应MongoDB中 users 集合的一个文档。
type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Name 是展示名，会在发照片/评论时被快照到对应文档里。
	Name string `bson:"name" json:"name"`

	// Email 是登录凭证，在 users 集合上有唯一索引。
	Email string `bson:"email" json:"email"`

	// Password 存 bcrypt 哈希。json:"-" 确保它永远不会被序列化到响应里。
	Password string `bson:"password" json:"-"`

	// ProfileImage 是头像的 blob 引用（上传时生成的文件名）。
	ProfileImage string `bson:"profileImage,omitempty" json:"profileImage,omitempty"`

	Bio string `bson:"bio,omitempty" json:"bio,omitempty"`

	Timestamps `bson:",inline"`
}

// Photo 代表一张照片，对应MongoDB中 photos 集合的一个文档。
// 点赞和评论都内嵌在照片文档里，读取一张照片即可拿到全部展示数据。
type Photo struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Image 是图片内容的不透明引用（存储层的文件名/键），创建后不可变。
	Image string `bson:"image" json:"image"`

	// Title 是照片标题，唯一可被修改的字段，且只有所有者能改。
	Title string `bson:"title" json:"title"`

	// UserID 指向创建者，照片的所有权不会转移。
	UserID primitive.ObjectID `bson:"userId" json:"userId"`

	// UserName 是创建者展示名在创建时刻的快照。
	// 用户之后改名不会回写到这里，这是刻意的反范式设计：
	// 列表页渲染不需要再查一次 users 集合。
	UserName string `bson:"userName" json:"userName"`

	// Likes 是点赞用户的ID集合。同一个用户最多出现一次，
	// 集合只增不减（没有取消点赞的操作）。
	Likes []primitive.ObjectID `bson:"likes" json:"likes"`

	// Comments 按追加顺序保存，只增不减，顺序不变。
	Comments []Comment `bson:"comments" json:"comments"`

	Timestamps `bson:",inline"`
}

// Comment 是内嵌在 Photo 文档中的评论，没有独立的生命周期，
// 只会随着照片被删除而一起消失。
type Comment struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Comment string `bson:"comment" json:"comment"`

	// UserName 和 UserImage 是评论者展示名/头像在评论时刻的快照，
	// 与 Photo.UserName 同样的反范式策略。
	UserName  string             `bson:"userName" json:"userName"`
	UserImage string             `bson:"userImage,omitempty" json:"userImage,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
