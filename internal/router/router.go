package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/handler"
	"github.com/quillpress/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// Options 汇总构建路由所需的依赖与配置。
type Options struct {
	API           *handler.API
	Logger        *slog.Logger
	SessionSecret string
	// UploadDir 为空时不挂载本地静态上传目录（例如使用 S3）。
	UploadDir     string
	UploadURLPath string
	CORSOrigins   []string

	Redis             *redis.Client
	CommentRateLimit  int
	CommentRateWindow time.Duration
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件，用于一次性提示消息
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("quillpress_session", store))

	if opts.UploadDir != "" && opts.UploadURLPath != "" {
		r.Static(opts.UploadURLPath, opts.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := opts.API
	group := r.Group("/api")
	{
		group.GET("/flash", api.GetFlash)

		group.GET("/posts", api.ListPosts)
		group.GET("/posts/:id", api.GetPost)
		group.POST("/posts", api.CreatePost)
		group.PUT("/posts/:id", api.UpdatePost)
		group.DELETE("/posts/:id", api.DeletePost)

		group.GET("/posts/:id/comments", api.ListComments)
		group.POST("/posts/:id/comments",
			middleware.RateLimit(opts.Redis, opts.CommentRateLimit, opts.CommentRateWindow, log),
			api.CreateComment)

		group.GET("/blog/:slug", api.ShowPostDetail)

		group.GET("/categories", api.GetCategories)
		group.POST("/categories", api.CreateCategory)
		group.PUT("/categories/:id", api.UpdateCategory)
		group.DELETE("/categories/:id", api.DeleteCategory)
		group.GET("/categories/:id/posts", api.ListCategoryPosts)

		group.GET("/authors", api.GetAuthors)
		group.POST("/authors", api.CreateAuthor)
		group.PUT("/authors/:id", api.UpdateAuthor)
		group.DELETE("/authors/:id", api.DeleteAuthor)

		group.POST("/uploads", api.UploadImage)
	}

	return r
}
