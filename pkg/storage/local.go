// Package storage 提供 blob 引用解析器的本地磁盘实现：
// 把上传的文件写进上传目录，返回生成的文件名作为不透明引用。
// 核心业务只保存这个引用，不关心文件内容。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalBlobStore 把上传内容保存在本地目录里，文件名用UUID生成，
// 和原始文件名解耦，避免重名覆盖和路径注入。
type LocalBlobStore struct {
	dir string
}

// NewLocalBlobStore 创建本地 blob 存储，目录不存在时自动创建。
func NewLocalBlobStore(dir string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalBlobStore{dir: dir}, nil
}

// Save 把 r 的内容写入存储，返回生成的引用（文件名）。
// 只保留原始文件名的扩展名部分。
func (s *LocalBlobStore) Save(r io.Reader, originalName string) (string, error) {
	ref := uuid.New().String() + sanitizeExt(originalName)

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// 写入失败时清掉残留的半截文件
		os.Remove(f.Name())
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	return ref, nil
}

// Open 按引用打开存储的内容，供静态文件路由使用。
func (s *LocalBlobStore) Open(ref string) (io.ReadCloser, error) {
	// 引用是我们自己生成的UUID文件名，这里再过滤一次路径分隔符
	if ref != filepath.Base(ref) {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(s.dir, ref))
}

// sanitizeExt 提取并清洗扩展名，异常的扩展名直接丢弃。
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
