package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore 将图片保存到本地目录，并通过静态路由对外提供访问。
type LocalStore struct {
	dir       string
	urlPrefix string
	allowed   []string
	now       func() time.Time
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir, urlPrefix string, allowed []string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(urlPrefix), "/")
	return &LocalStore{dir: dir, urlPrefix: prefix, allowed: allowed, now: time.Now}, nil
}

// Store writes data under a generated name and returns its public URL path.
func (s *LocalStore) Store(data []byte, originalName string) (string, error) {
	if err := ValidateImage(data, originalName, s.allowed); err != nil {
		return "", err
	}

	name := objectName(originalName, s.now())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path.Join(s.urlPrefix, name), nil
}

// Delete removes a file previously returned by Store. Missing files are ignored.
func (s *LocalStore) Delete(ref string) error {
	if !strings.HasPrefix(ref, s.urlPrefix+"/") {
		return fmt.Errorf("reference %q is not managed by this store", ref)
	}
	name := filepath.Base(strings.TrimPrefix(ref, s.urlPrefix+"/"))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
