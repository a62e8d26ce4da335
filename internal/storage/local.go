package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"family_hub_server/pkg/errorx"
)

// URLPrefix 本地文件的公开访问路径，由 https_server 挂载为静态目录
const URLPrefix = "/uploads"

// LocalStorage 将对象保存在本地目录
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage 创建本地存储，目录不存在时自动创建
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeStorageError, "create upload dir %s", root)
	}
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root 返回本地存储根目录
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", errorx.New(errorx.CodeInvalidParam, "empty storage key")
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errorx.Wrapf(err, errorx.CodeStorageError, "create dir for %s", key)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeStorageError, "create file %s", key)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", errorx.Wrapf(err, errorx.CodeStorageError, "write file %s", key)
	}
	if err := file.Close(); err != nil {
		return "", errorx.Wrapf(err, errorx.CodeStorageError, "close file %s", key)
	}
	return joinURL(s.baseURL+URLPrefix, key), nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errorx.Wrapf(err, errorx.CodeStorageError, "remove file %s", key)
	}
	return nil
}

func (s *LocalStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return joinURL(s.baseURL+URLPrefix, key), nil
}

var _ Storage = (*LocalStorage)(nil)
