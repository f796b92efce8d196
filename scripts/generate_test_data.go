package main

import (
	"fmt"
	"log"

	"github.com/quillpress/internal/config"
	"github.com/quillpress/internal/db"
	"github.com/quillpress/internal/moderation"
	"github.com/quillpress/internal/service"
	"github.com/quillpress/internal/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type samplePost struct {
	title    string
	body     string
	category string
	comments []service.CommentInput
}

var samplePosts = []samplePost{
	{
		title:    "Introduction to ASP.NET Core",
		body:     "ASP.NET Core is a cross-platform framework for building web apps.\n\n- Middleware pipeline\n- Dependency injection\n- Configuration providers",
		category: "ASP.NET Core",
		comments: []service.CommentInput{
			{Name: "Reader One", Email: "reader1@example.com", Text: "Clear and short, thanks."},
		},
	},
	{
		title:    "Getting Started with C#",
		body:     "C# is a modern, object oriented language.\n\n```csharp\nConsole.WriteLine(\"Hello\");\n```",
		category: "C#",
	},
	{
		title:    "SQL Server Indexing Basics",
		body:     "Indexes speed up reads at the cost of writes. Start with the columns used in WHERE and ORDER BY clauses.",
		category: "SQL Server",
		comments: []service.CommentInput{
			{Name: "DBA", Email: "dba@example.com", Text: "Covering indexes deserve a follow-up."},
			{Name: "Reader Two", Email: "reader2@example.com", Text: "Bookmarked."},
		},
	},
	{
		title:    "Java Streams in Practice",
		body:     "Streams make collection pipelines declarative. Prefer them for transformations, not for side effects.",
		category: "Java",
	},
	{
		title:    "Middleware Ordering in ASP.NET Core",
		body:     "The order in which middleware is registered is the order in which it runs.",
		category: "ASP.NET Core",
	},
}

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger.Warn)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	created, err := generateSampleData(gdb, moderation.New(cfg.ProhibitedTerms))
	if err != nil {
		log.Fatal("测试数据生成失败:", err)
	}
	fmt.Printf("测试数据生成完成！新增文章 %d 篇\n", created)
}

// generateSampleData seeds the lookup tables and adds the sample posts that
// are not present yet. It returns the number of posts created.
func generateSampleData(gdb *gorm.DB, filter *moderation.Filter) (int, error) {
	if err := db.Seed(gdb); err != nil {
		return 0, err
	}

	var categories []db.Category
	if err := gdb.Find(&categories).Error; err != nil {
		return 0, err
	}
	categoryIDs := make(map[string]uint, len(categories))
	for _, category := range categories {
		categoryIDs[category.Name] = category.ID
	}

	var authors []db.Author
	if err := gdb.Order("id asc").Find(&authors).Error; err != nil {
		return 0, err
	}
	if len(authors) == 0 {
		return 0, fmt.Errorf("no authors available")
	}

	posts := service.NewPostService(gdb, nil)
	comments := service.NewCommentService(gdb, filter)

	created := 0
	for idx, sample := range samplePosts {
		candidate := slug.Derive(sample.title)
		var existing int64
		if err := gdb.Model(&db.Post{}).Where("slug = ?", candidate).Count(&existing).Error; err != nil {
			return created, err
		}
		if existing > 0 {
			fmt.Printf("文章已存在，跳过: %s\n", sample.title)
			continue
		}

		categoryID, ok := categoryIDs[sample.category]
		if !ok {
			return created, fmt.Errorf("category %q not found", sample.category)
		}

		post, err := posts.Create(service.PostInput{
			Title:      sample.title,
			Body:       sample.body,
			AuthorID:   authors[idx%len(authors)].ID,
			CategoryID: categoryID,
		})
		if err != nil {
			return created, fmt.Errorf("create %q: %w", sample.title, err)
		}
		created++

		for _, input := range sample.comments {
			if _, err := comments.Create(post.ID, input); err != nil {
				return created, fmt.Errorf("comment on %q: %w", sample.title, err)
			}
		}
		fmt.Printf("✅ 文章创建完成: %s (%s)\n", post.Title, post.Slug)
	}

	return created, nil
}
