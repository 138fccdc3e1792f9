package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	blobs, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	ref, err := blobs.Save(strings.NewReader("content-1"), "My Photo.PNG")
	require.NoError(t, err)

	// 引用是UUID加上小写的原始扩展名
	require.True(t, strings.HasSuffix(ref, ".png"), ref)
	_, err = uuid.Parse(strings.TrimSuffix(ref, ".png"))
	assert.NoError(t, err)

	f, err := blobs.Open(ref)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "content-1", string(data))
}

// 同名文件不会互相覆盖。
func TestSaveGeneratesUniqueRefs(t *testing.T) {
	blobs, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	ref1, err := blobs.Save(strings.NewReader("a"), "same.jpg")
	require.NoError(t, err)
	ref2, err := blobs.Save(strings.NewReader("b"), "same.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, ref1, ref2)
}

func TestSaveDropsSuspiciousExt(t *testing.T) {
	blobs, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	ref, err := blobs.Save(strings.NewReader("x"), "noext")
	require.NoError(t, err)
	assert.NotContains(t, ref, ".")

	ref, err = blobs.Save(strings.NewReader("x"), "weird.averylongextension")
	require.NoError(t, err)
	assert.NotContains(t, ref, ".")
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	blobs, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	_, err = blobs.Open("../etc/passwd")
	assert.Error(t, err)
}
