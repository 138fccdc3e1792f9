package service

import "errors"

// 业务层的失败种类统一用哨兵错误表达，handler 用 errors.Is 判断后
// 映射为对应的HTTP状态码。其余未列出的错误一律视为存储层故障，
// 包装后原样向上传递，业务层不做重试。
var (
	// ErrNotFound 同时覆盖“ID格式不合法”和“记录不存在”两种情况，
	// 对外不区分，避免泄露ID的格式信息。
	ErrNotFound = errors.New("照片未找到")

	// ErrAccessDenied 表示非所有者尝试修改或删除照片。
	ErrAccessDenied = errors.New("访问被拒绝")

	// ErrAlreadyLiked 表示同一用户重复点赞，属于用户可见的正常分支。
	ErrAlreadyLiked = errors.New("你已经赞过这张照片")

	// ErrUserNotFound 表示评论者（或令牌对应的用户）无法解析。
	ErrUserNotFound = errors.New("用户未找到")

	// ErrEmailInUse 表示注册邮箱已存在。
	ErrEmailInUse = errors.New("该邮箱已被注册，请使用其他邮箱")

	// ErrInvalidCredentials 表示登录邮箱或密码不正确。
	ErrInvalidCredentials = errors.New("邮箱或密码不正确")
)
