package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/service"
)

// GetAuthors 获取作者列表（按姓名排序）
func (a *API) GetAuthors(c *gin.Context) {
	authors, err := a.authors.List()
	if err != nil {
		a.handleError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors})
}

// CreateAuthor 创建新作者
func (a *API) CreateAuthor(c *gin.Context) {
	var req service.AuthorInput
	if !bindJSON(c, &req, "invalid author payload") {
		return
	}

	author, err := a.authors.Create(req)
	if err != nil {
		a.handleError(c, err, "create author")
		return
	}

	a.addFlash(c, "Author added successfully.")
	c.JSON(http.StatusCreated, gin.H{"message": "Author added successfully.", "author": author})
}

// UpdateAuthor 更新作者
func (a *API) UpdateAuthor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid author id")
		return
	}

	var req service.AuthorInput
	if !bindJSON(c, &req, "invalid author payload") {
		return
	}

	author, err := a.authors.Update(id, req)
	if err != nil {
		a.handleError(c, err, "update author")
		return
	}

	a.addFlash(c, "Author updated successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Author updated successfully.", "author": author})
}

// DeleteAuthor 删除作者，仍被文章引用时拒绝
func (a *API) DeleteAuthor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid author id")
		return
	}

	if err := a.authors.Delete(id); err != nil {
		a.handleError(c, err, "delete author")
		return
	}

	a.addFlash(c, "Author deleted successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Author deleted successfully."})
}
