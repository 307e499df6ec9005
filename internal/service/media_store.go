package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/ceb/internal/model"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrBadMediaPath     = errors.New("media path outside upload root")
)

var allowedImageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// MediaStore 上传文件存储
type MediaStore interface {
	// Save 保存图片并返回相对 media 根目录的路径
	Save(filename string, r io.Reader) (string, error)
	Remove(rel string) error
}

// FileMediaStore 本地磁盘存储，文件落在 <root>/reg/image 下
type FileMediaStore struct {
	root string
}

func NewFileMediaStore(root string) *FileMediaStore { return &FileMediaStore{root: root} }

func (s *FileMediaStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	dir := filepath.Join(s.root, filepath.FromSlash(model.ImageUploadDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(model.ImageUploadDir, name), nil
}

// Remove 删除已保存的文件；文件不存在不算错误
func (s *FileMediaStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean(rel)
	if !strings.HasPrefix(clean, model.ImageUploadDir+"/") {
		return ErrBadMediaPath
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
