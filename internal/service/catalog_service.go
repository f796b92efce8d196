package service

import (
	"errors"
	"strings"

	"github.com/quillpress/internal/db"
	"gorm.io/gorm"
)

// DefaultPageSize 在调用方未给出合法页大小时使用。
const DefaultPageSize = 10

// CatalogService builds read-only, paginated views over posts.
type CatalogService struct {
	db       *gorm.DB
	views    *ViewCounter
	pageSize int
}

// PostFilter describes filters for listing posts. Zero values disable a filter.
type PostFilter struct {
	TitleContains string
	CategoryID    uint
}

// PostPage 是一页文章列表。
type PostPage struct {
	Items       []db.Post
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PageSize    int
	Filter      PostFilter
}

// CategoryPage 是某个分类下的一页文章。
type CategoryPage struct {
	PostPage
	Category db.Category
}

// PostDetail bundles a post with the rows it references.
type PostDetail struct {
	Post     db.Post
	Author   db.Author
	Category db.Category
	Comments []db.Comment
}

// NewCatalogService creates a CatalogService. A non-positive pageSize falls
// back to DefaultPageSize.
func NewCatalogService(gdb *gorm.DB, views *ViewCounter, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CatalogService{db: gdb, views: views, pageSize: pageSize}
}

// ListPosts returns posts newest first, ties in insertion order. Out of
// range pages are clamped to the nearest valid page.
func (s *CatalogService) ListPosts(filter PostFilter, page, pageSize int) (*PostPage, error) {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	filter.TitleContains = strings.TrimSpace(filter.TitleContains)

	var total int64
	if err := s.applyFilter(s.db.Model(&db.Post{}), filter).Count(&total).Error; err != nil {
		return nil, translateStoreError(err)
	}

	current, totalPages := clampPage(total, page, pageSize)

	posts := make([]db.Post, 0, pageSize)
	if err := s.applyFilter(s.db.Model(&db.Post{}), filter).
		Order("published_at desc").
		Order("id asc").
		Offset((current - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		return nil, translateStoreError(err)
	}

	return &PostPage{
		Items:       posts,
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalItems:  total,
		PageSize:    pageSize,
		Filter:      filter,
	}, nil
}

// ListPostsByCategory is ListPosts with a fixed category. Unknown categories
// return ErrCategoryNotFound.
func (s *CatalogService) ListPostsByCategory(categoryID uint, page, pageSize int) (*CategoryPage, error) {
	var category db.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, translateStoreError(err)
	}

	result, err := s.ListPosts(PostFilter{CategoryID: category.ID}, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &CategoryPage{PostPage: *result, Category: category}, nil
}

// PostDetail 按 slug 读取文章，记录一次浏览后返回最新数据及评论。
func (s *CatalogService) PostDetail(slug string) (*PostDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	var post db.Post
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, translateStoreError(err)
	}

	if err := s.views.RecordView(post.ID); err != nil {
		return nil, err
	}
	if err := s.db.First(&post, post.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, translateStoreError(err)
	}

	detail := &PostDetail{Post: post}
	if err := s.db.First(&detail.Author, post.AuthorID).Error; err != nil {
		return nil, translateStoreError(err)
	}
	if err := s.db.First(&detail.Category, post.CategoryID).Error; err != nil {
		return nil, translateStoreError(err)
	}
	if err := s.db.Where("post_id = ?", post.ID).
		Order("posted_at asc").
		Order("id asc").
		Find(&detail.Comments).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return detail, nil
}

func (s *CatalogService) applyFilter(query *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.TitleContains != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.TitleContains)) + "%"
		query = query.Where(db.LowerExpr(s.db, "posts.title")+` LIKE ? ESCAPE '\'`, pattern)
	}
	if filter.CategoryID != 0 {
		query = query.Where("posts.category_id = ?", filter.CategoryID)
	}
	return query
}

// clampPage returns the page to serve and the page count.
// totalPages is at least 1 so an empty result still has a page 1.
func clampPage(total int64, page, pageSize int) (int, int) {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
