package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillpress/internal/db"
	"github.com/quillpress/internal/slug"
	"github.com/quillpress/internal/storage"
	"gorm.io/gorm"
)

// PostService 负责文章的创建、编辑与删除。
type PostService struct {
	db     *gorm.DB
	images storage.Store
	now    func() time.Time
	// slugLookup 在事务内构造 slug 预检，唯一索引仍是最终裁决。
	slugLookup func(tx *gorm.DB) slug.Lookup
}

// ImageUpload carries the raw bytes of a featured image.
type ImageUpload struct {
	Data []byte
	Name string
}

// PostInput represents fields accepted when creating or updating a post.
// An empty Slug asks the service to derive one from Title.
type PostInput struct {
	Title           string       `json:"title" validate:"required,max=200"`
	Body            string       `json:"body" validate:"required"`
	Slug            string       `json:"slug" validate:"max=200"`
	MetaTitle       *string      `json:"metaTitle" validate:"omitempty,max=150"`
	MetaDescription *string      `json:"metaDescription" validate:"omitempty,max=300"`
	MetaKeywords    *string      `json:"metaKeywords" validate:"omitempty,max=250"`
	AuthorID        uint         `json:"authorId" validate:"required"`
	CategoryID      uint         `json:"categoryId" validate:"required"`
	Image           *ImageUpload `json:"-"`
}

// NewPostService creates a PostService. images may be nil when uploads are disabled.
func NewPostService(gdb *gorm.DB, images storage.Store) *PostService {
	return &PostService{db: gdb, images: images, now: time.Now, slugLookup: newPostSlugLookup}
}

// Get fetches a post by id without touching its view count.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, translateStoreError(err)
	}
	return &post, nil
}

// Create validates input, resolves a unique slug and persists the post.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	input = normalizePostInput(input)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	imageRef, err := s.storeImage(input.Image)
	if err != nil {
		return nil, err
	}

	post := db.Post{
		Title:           input.Title,
		Body:            input.Body,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		MetaKeywords:    input.MetaKeywords,
		PublishedAt:     s.now(),
		AuthorID:        input.AuthorID,
		CategoryID:      input.CategoryID,
	}
	if imageRef != "" {
		post.FeaturedImage = &imageRef
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensurePostReferences(tx, input.AuthorID, input.CategoryID); err != nil {
			return err
		}
		resolved, err := resolveSlug(s.slugLookup(tx), input.Title, input.Slug, 0)
		if err != nil {
			return err
		}
		post.Slug = resolved
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, withOrphan(imageRef, translateStoreError(err))
	}
	return &post, nil
}

// Update applies input to an existing post. Without a new image the stored
// reference is kept. The post's own slug never counts as a collision.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	input = normalizePostInput(input)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	imageRef, err := s.storeImage(input.Image)
	if err != nil {
		return nil, err
	}

	var post db.Post
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if err := ensurePostReferences(tx, input.AuthorID, input.CategoryID); err != nil {
			return err
		}
		resolved, err := resolveSlug(s.slugLookup(tx), input.Title, input.Slug, id)
		if err != nil {
			return err
		}

		modifiedAt := s.now()
		updates := map[string]interface{}{
			"title":            input.Title,
			"body":             input.Body,
			"slug":             resolved,
			"meta_title":       input.MetaTitle,
			"meta_description": input.MetaDescription,
			"meta_keywords":    input.MetaKeywords,
			"author_id":        input.AuthorID,
			"category_id":      input.CategoryID,
			"modified_at":      &modifiedAt,
		}
		if imageRef != "" {
			updates["featured_image"] = imageRef
		}

		// view_count 不在更新列中，避免覆盖并发的浏览计数。
		if err := tx.Model(&db.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&post, id).Error
	})
	if err != nil {
		return nil, withOrphan(imageRef, translateStoreError(err))
	}
	return &post, nil
}

// Delete removes the post and its comments in one transaction.
// Absent posts return ErrPostNotFound.
func (s *PostService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	return translateStoreError(err)
}

func (s *PostService) storeImage(upload *ImageUpload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", nil
	}
	if s.images == nil {
		return "", fmt.Errorf("%w: image uploads are not configured", ErrStorage)
	}

	ref, err := s.images.Store(upload.Data, upload.Name)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) ||
			errors.Is(err, storage.ErrInvalidImage) ||
			errors.Is(err, storage.ErrEmptyUpload) {
			return "", fieldError("featuredImage", err.Error())
		}
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return ref, nil
}

func withOrphan(ref string, err error) error {
	if ref == "" {
		return err
	}
	return &PartialFailureError{Reference: ref, Err: err}
}

func normalizePostInput(input PostInput) PostInput {
	input.Title = strings.TrimSpace(input.Title)
	if strings.TrimSpace(input.Body) == "" {
		input.Body = ""
	}
	if strings.TrimSpace(input.Slug) == "" {
		input.Slug = ""
	}
	input.MetaTitle = optionalString(input.MetaTitle)
	input.MetaDescription = optionalString(input.MetaDescription)
	input.MetaKeywords = optionalString(input.MetaKeywords)
	return input
}

func optionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ensurePostReferences checks the author and category inside tx so the
// check and the insert see the same snapshot.
func ensurePostReferences(tx *gorm.DB, authorID, categoryID uint) error {
	var count int64
	if err := tx.Model(&db.Author{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrAuthorMissing
	}
	if err := tx.Model(&db.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryMissing
	}
	return nil
}

func resolveSlug(lookup slug.Lookup, title, provided string, excludeID uint) (string, error) {
	resolved, err := slug.NewResolver(lookup).Resolve(title, provided, excludeID)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, slug.ErrTaken):
		return "", fmt.Errorf("%w: %q", ErrSlugTaken, provided)
	case errors.Is(err, slug.ErrTooLong), errors.Is(err, slug.ErrEmpty):
		return "", fieldError("slug", err.Error())
	case errors.Is(err, slug.ErrExhausted):
		return "", fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return "", err
	}
}

// postSlugLookup answers slug existence queries against the posts table.
type postSlugLookup struct {
	db *gorm.DB
}

func newPostSlugLookup(tx *gorm.DB) slug.Lookup {
	return postSlugLookup{db: tx}
}

func (l postSlugLookup) SlugExists(candidate string, excludeID uint) (bool, error) {
	query := l.db.Model(&db.Post{}).Where("slug = ?", candidate)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
