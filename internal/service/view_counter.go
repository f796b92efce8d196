package service

import (
	"errors"

	"github.com/quillpress/internal/db"
	"gorm.io/gorm"
)

// ViewCounter 负责文章浏览量统计。
type ViewCounter struct {
	db *gorm.DB
}

// NewViewCounter creates a ViewCounter.
func NewViewCounter(gdb *gorm.DB) *ViewCounter {
	return &ViewCounter{db: gdb}
}

// RecordView adds exactly one view to the post. The increment happens in a
// single UPDATE so concurrent readers never lose counts.
func (v *ViewCounter) RecordView(postID uint) error {
	result := v.db.Model(&db.Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Count returns the stored view count of a post.
func (v *ViewCounter) Count(postID uint) (int64, error) {
	var post db.Post
	if err := v.db.Select("id", "view_count").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPostNotFound
		}
		return 0, translateStoreError(err)
	}
	return post.ViewCount, nil
}
