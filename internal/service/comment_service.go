package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillpress/internal/db"
	"github.com/quillpress/internal/moderation"
	"gorm.io/gorm"
)

// CommentService 负责读者评论的创建，评论必须先通过屏蔽词检查。
type CommentService struct {
	db     *gorm.DB
	filter *moderation.Filter
	now    func() time.Time
}

// CommentInput represents fields accepted when posting a comment.
type CommentInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Text  string `json:"text" validate:"required,max=1000"`
}

// NewCommentService creates a CommentService using filter for moderation.
func NewCommentService(gdb *gorm.DB, filter *moderation.Filter) *CommentService {
	return &CommentService{db: gdb, filter: filter, now: time.Now}
}

// Create moderates and stores a comment on postID.
func (s *CommentService) Create(postID uint, input CommentInput) (*db.Comment, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if strings.TrimSpace(input.Text) == "" {
		input.Text = ""
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if result := s.filter.Check(input.Text); !result.Accepted {
		return nil, &ValidationError{
			Fields: map[string]string{"text": fmt.Sprintf("contains prohibited term %q", result.Term)},
			Term:   result.Term,
		}
	}

	comment := db.Comment{
		Name:   input.Name,
		Email:  input.Email,
		Text:   input.Text,
		PostID: postID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}
		comment.PostedAt = s.now()
		return tx.Create(&comment).Error
	})
	if err != nil {
		// 外键失败说明文章在检查之后被删除。
		if errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, translateStoreError(err)
	}
	return &comment, nil
}

// ListForPost returns a post's comments oldest first.
func (s *CommentService) ListForPost(postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.Where("post_id = ?", postID).
		Order("posted_at asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return comments, nil
}
