package handler

import (
	"log/slog"

	"github.com/quillpress/internal/moderation"
	"github.com/quillpress/internal/service"
	"github.com/quillpress/internal/storage"
	"gorm.io/gorm"
)

// Deps 是构造 API 所需的外部依赖。
type Deps struct {
	DB       *gorm.DB
	Images   storage.Store
	Filter   *moderation.Filter
	PageSize int
	Logger   *slog.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	catalog    *service.CatalogService
	posts      *service.PostService
	comments   *service.CommentService
	authors    *service.AuthorService
	categories *service.CategoryService
	images     storage.Store
	log        *slog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Deps) *API {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	views := service.NewViewCounter(deps.DB)

	return &API{
		catalog:    service.NewCatalogService(deps.DB, views, deps.PageSize),
		posts:      service.NewPostService(deps.DB, deps.Images),
		comments:   service.NewCommentService(deps.DB, deps.Filter),
		authors:    service.NewAuthorService(deps.DB),
		categories: service.NewCategoryService(deps.DB),
		images:     deps.Images,
		log:        log,
	}
}
