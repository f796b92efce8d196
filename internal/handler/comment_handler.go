package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/service"
)

// CreateComment 发表评论
func (a *API) CreateComment(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req service.CommentInput
	if !bindJSON(c, &req, "invalid comment payload") {
		return
	}

	comment, err := a.comments.Create(postID, req)
	if err != nil {
		a.handleError(c, err, "create comment")
		return
	}

	a.addFlash(c, "Comment added successfully.")
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully.", "comment": comment})
}

// ListComments 返回文章下的评论，按时间正序
func (a *API) ListComments(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, err := a.posts.Get(postID); err != nil {
		a.handleError(c, err, "list comments")
		return
	}

	comments, err := a.comments.ListForPost(postID)
	if err != nil {
		a.handleError(c, err, "list comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
