package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/markup"
)

// ShowPostDetail 按 slug 返回文章详情，并计入一次浏览。
func (a *API) ShowPostDetail(c *gin.Context) {
	detail, err := a.catalog.PostDetail(c.Param("slug"))
	if err != nil {
		a.handleError(c, err, "load post")
		return
	}

	bodyHTML, err := markup.Render(detail.Post.Body)
	if err != nil {
		a.log.Warn("failed to render post body", "id", detail.Post.ID, "error", err)
	}

	post := detail.Post
	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"bodyHtml": bodyHTML,
		"seo": gin.H{
			"title":       post.SEOTitle(),
			"description": post.MetaDescription,
			"keywords":    post.MetaKeywords,
		},
		"author":   detail.Author,
		"category": detail.Category,
		"comments": detail.Comments,
	})
}

// ListCategoryPosts 返回某个分类下的文章分页
func (a *API) ListCategoryPosts(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 0)

	result, err := a.catalog.ListPostsByCategory(id, page, pageSize)
	if err != nil {
		a.handleError(c, err, "list category posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":    result.Category,
		"posts":       result.Items,
		"currentPage": result.CurrentPage,
		"totalPages":  result.TotalPages,
		"totalItems":  result.TotalItems,
		"pageSize":    result.PageSize,
	})
}
