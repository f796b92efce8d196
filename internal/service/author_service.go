package service

import (
	"errors"
	"strings"

	"github.com/quillpress/internal/db"
	"gorm.io/gorm"
)

// AuthorService 负责作者的增删改查，被文章引用的作者不能删除。
type AuthorService struct {
	db *gorm.DB
}

// AuthorInput represents fields accepted when creating or editing an author.
type AuthorInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// AuthorUsage 描述作者及其文章数量
type AuthorUsage struct {
	db.Author
	PostCount int64 `json:"postCount"`
}

// NewAuthorService creates an AuthorService instance.
func NewAuthorService(gdb *gorm.DB) *AuthorService {
	return &AuthorService{db: gdb}
}

// List returns authors ordered by name with their post counts.
func (s *AuthorService) List() ([]AuthorUsage, error) {
	var rows []AuthorUsage
	if err := s.db.
		Model(&db.Author{}).
		Select("authors.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN posts ON posts.author_id = authors.id").
		Group("authors.id").
		Order("authors.name asc").
		Order("authors.id asc").
		Scan(&rows).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return rows, nil
}

// Get fetches an author by id.
func (s *AuthorService) Get(id uint) (*db.Author, error) {
	var author db.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, translateStoreError(err)
	}
	return &author, nil
}

// Create inserts a new author.
func (s *AuthorService) Create(input AuthorInput) (*db.Author, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	author := db.Author{Name: input.Name, Email: input.Email}
	if err := s.db.Create(&author).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &author, nil
}

// Update changes an author's name and email.
func (s *AuthorService) Update(id uint, input AuthorInput) (*db.Author, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	author, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	author.Name = input.Name
	author.Email = input.Email
	if err := s.db.Save(author).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return author, nil
}

// Delete removes an author that no post references.
func (s *AuthorService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Post{}).Where("author_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAuthorInUse
		}

		result := tx.Delete(&db.Author{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAuthorNotFound
		}
		return nil
	})
	if err != nil && (errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyViolation(err)) {
		return ErrAuthorInUse
	}
	return translateStoreError(err)
}
