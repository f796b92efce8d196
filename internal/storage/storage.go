// Package storage keeps uploaded images and hands back an opaque reference.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyUpload     = errors.New("upload is empty")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrInvalidImage    = errors.New("file is not a valid image")
)

// DefaultAllowedExtensions 是允许上传的图片扩展名。
var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Store persists bytes and returns a reference that can later be passed to Delete.
type Store interface {
	Store(data []byte, originalName string) (string, error)
	Delete(ref string) error
}

// ValidateImage checks the extension against allowed and that the bytes decode
// as an image header.
func ValidateImage(data []byte, originalName string, allowed []string) error {
	if len(data) == 0 {
		return ErrEmptyUpload
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !extensionAllowed(ext, allowed) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimSpace(candidate), ext) {
			return true
		}
	}
	return false
}

// objectName 生成形如 20060102-<uuid>.png 的唯一文件名。
func objectName(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.New().String(), ext)
}
