package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/storage"
)

// UploadImage 处理编辑器内的图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	if a.images == nil {
		respondError(c, http.StatusServiceUnavailable, "image uploads are disabled")
		return
	}

	file, err := c.FormFile("upload")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"uploaded": false, "error": "no file uploaded"})
		return
	}

	upload, err := readUpload(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"uploaded": false, "error": err.Error()})
		return
	}

	ref, err := a.images.Store(upload.Data, upload.Name)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) ||
			errors.Is(err, storage.ErrInvalidImage) ||
			errors.Is(err, storage.ErrEmptyUpload) {
			c.JSON(http.StatusBadRequest, gin.H{"uploaded": false, "error": err.Error()})
			return
		}
		a.log.Error("image upload failed", "error", err, "name", upload.Name)
		c.JSON(http.StatusInternalServerError, gin.H{"uploaded": false, "error": "failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploaded": true, "url": ref})
}
