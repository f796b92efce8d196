package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/service"
)

const maxUploadBytes = 10 << 20

// ListPosts 获取文章列表，支持标题、分类筛选与分页
func (a *API) ListPosts(c *gin.Context) {
	filter := service.PostFilter{
		TitleContains: c.Query("title"),
		CategoryID:    parseUintQuery(c.Query("categoryId")),
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 0)

	result, err := a.catalog.ListPosts(filter, page, pageSize)
	if err != nil {
		a.handleError(c, err, "list posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       result.Items,
		"currentPage": result.CurrentPage,
		"totalPages":  result.TotalPages,
		"totalItems":  result.TotalItems,
		"pageSize":    result.PageSize,
		"filter": gin.H{
			"title":      result.Filter.TitleContains,
			"categoryId": result.Filter.CategoryID,
		},
	})
}

// GetPost 获取单篇文章（后台编辑用，不计入浏览量）
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		a.handleError(c, err, "get post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	input, err := readPostInput(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Create(input)
	if err != nil {
		a.handleError(c, err, "create post")
		return
	}

	a.log.Info("post created", "id", post.ID, "slug", post.Slug)
	a.addFlash(c, "Blog post added successfully.")
	c.JSON(http.StatusCreated, gin.H{"message": "Blog post added successfully.", "post": post})
}

// UpdatePost 更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	input, err := readPostInput(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Update(id, input)
	if err != nil {
		a.handleError(c, err, "update post")
		return
	}

	a.addFlash(c, "Blog post updated successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Blog post updated successfully.", "post": post})
}

// DeletePost 删除文章及其评论；文章不存在时视为已删除。
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "Blog post deleted successfully."})
			return
		}
		a.handleError(c, err, "delete post")
		return
	}

	a.log.Info("post deleted", "id", id)
	a.addFlash(c, "Blog post deleted successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Blog post deleted successfully."})
}

// readPostInput accepts either a JSON body or a multipart form with an
// optional "featuredImage" file.
func readPostInput(c *gin.Context) (service.PostInput, error) {
	var input service.PostInput
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&input); err != nil {
			return input, errors.New("invalid post payload")
		}
		return input, nil
	}

	input.Title = c.PostForm("title")
	input.Body = c.PostForm("body")
	input.Slug = c.PostForm("slug")
	input.AuthorID = parseUintQuery(c.PostForm("authorId"))
	input.CategoryID = parseUintQuery(c.PostForm("categoryId"))
	input.MetaTitle = optionalForm(c, "metaTitle")
	input.MetaDescription = optionalForm(c, "metaDescription")
	input.MetaKeywords = optionalForm(c, "metaKeywords")

	file, err := c.FormFile("featuredImage")
	switch {
	case err == nil:
		upload, err := readUpload(file)
		if err != nil {
			return input, err
		}
		input.Image = upload
	case !errors.Is(err, http.ErrMissingFile):
		return input, errors.New("invalid featured image")
	}
	return input, nil
}

func optionalForm(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

func readUpload(file *multipart.FileHeader) (*service.ImageUpload, error) {
	if file.Size > maxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d MB", maxUploadBytes>>20)
	}
	src, err := file.Open()
	if err != nil {
		return nil, errors.New("unable to read uploaded image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return nil, errors.New("unable to read uploaded image")
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d MB", maxUploadBytes>>20)
	}
	return &service.ImageUpload{Data: data, Name: file.Filename}, nil
}
