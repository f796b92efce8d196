package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// addFlash queues a one-shot success message in the session.
func (a *API) addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		a.log.Warn("failed to save flash message", "error", err)
	}
}

// GetFlash 返回并清空当前会话中的提示消息。
func (a *API) GetFlash(c *gin.Context) {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if err := session.Save(); err != nil {
		a.log.Warn("failed to clear flash messages", "error", err)
	}

	messages := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if text, ok := flash.(string); ok {
			messages = append(messages, text)
		}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
