package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parsePositiveInt(value string, fallback int) int {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

func parseUintQuery(value string) uint {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// statusFor maps service error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAuthorMissing), errors.Is(err, service.ErrCategoryMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrDependency):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleError 统一处理服务层错误：清理孤立的上传文件，记录日志并返回 JSON。
func (a *API) handleError(c *gin.Context, err error, action string) {
	var partial *service.PartialFailureError
	if errors.As(err, &partial) && a.images != nil {
		if cleanupErr := a.images.Delete(partial.Reference); cleanupErr != nil {
			a.log.Error("failed to remove orphaned upload", "ref", partial.Reference, "error", cleanupErr)
		}
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.log.Error(action+" failed", "error", err, "path", c.FullPath())
		respondError(c, status, action+" failed")
		return
	}

	a.log.Debug(action+" rejected", "error", err, "status", status)
	body := gin.H{"error": err.Error()}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	c.JSON(status, body)
}
