package service

import (
	"errors"
	"strings"

	"github.com/quillpress/internal/db"
	"gorm.io/gorm"
)

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput represents fields accepted when creating or renaming a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryUsage 描述分类及其文章数量
type CategoryUsage struct {
	db.Category
	PostCount int64 `json:"postCount"`
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns categories ordered by name with their post counts.
func (s *CategoryService) List() ([]CategoryUsage, error) {
	var rows []CategoryUsage
	if err := s.db.
		Model(&db.Category{}).
		Select("categories.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN posts ON posts.category_id = categories.id").
		Group("categories.id").
		Order("categories.name asc").
		Order("categories.id asc").
		Scan(&rows).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return rows, nil
}

// Get fetches a category by id.
func (s *CategoryService) Get(id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, translateStoreError(err)
	}
	return &category, nil
}

// Create inserts a new category.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	category := db.Category{Name: input.Name}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &category, nil
}

// Update renames a category.
func (s *CategoryService) Update(id uint, input CategoryInput) (*db.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	category.Name = input.Name
	if err := s.db.Save(category).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return category, nil
}

// Delete removes a category that no post references.
// The usage check and the delete share a transaction; the RESTRICT foreign
// key catches posts inserted concurrently.
func (s *CategoryService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Post{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryInUse
		}

		result := tx.Delete(&db.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
	if err != nil && (errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyViolation(err)) {
		return ErrCategoryInUse
	}
	return translateStoreError(err)
}
