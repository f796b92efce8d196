package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/service"
)

// GetCategories 获取分类列表（按名称排序）
func (a *API) GetCategories(c *gin.Context) {
	categories, err := a.categories.List()
	if err != nil {
		a.handleError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory 创建新分类
func (a *API) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if !bindJSON(c, &req, "invalid category payload") {
		return
	}

	category, err := a.categories.Create(req)
	if err != nil {
		a.handleError(c, err, "create category")
		return
	}

	a.addFlash(c, "Category added successfully.")
	c.JSON(http.StatusCreated, gin.H{"message": "Category added successfully.", "category": category})
}

// UpdateCategory 更新分类
func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	var req service.CategoryInput
	if !bindJSON(c, &req, "invalid category payload") {
		return
	}

	category, err := a.categories.Update(id, req)
	if err != nil {
		a.handleError(c, err, "update category")
		return
	}

	a.addFlash(c, "Category updated successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully.", "category": category})
}

// DeleteCategory 删除分类，仍被文章引用时拒绝
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		a.handleError(c, err, "delete category")
		return
	}

	a.addFlash(c, "Category deleted successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully."})
}
