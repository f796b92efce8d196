package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/quillpress/internal/db"
	"github.com/quillpress/internal/moderation"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSampleDataTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sample-data-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestGenerateSampleDataSeedsPostsAndComments(t *testing.T) {
	gdb := setupSampleDataTestDB(t)

	created, err := generateSampleData(gdb, moderation.New(moderation.DefaultTerms))
	if err != nil {
		t.Fatalf("generate sample data: %v", err)
	}
	if created != len(samplePosts) {
		t.Fatalf("expected %d posts, got %d", len(samplePosts), created)
	}

	expectedComments := 0
	for _, sample := range samplePosts {
		expectedComments += len(sample.comments)
	}
	var comments int64
	if err := gdb.Model(&db.Comment{}).Count(&comments).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if int(comments) != expectedComments {
		t.Fatalf("expected %d comments, got %d", expectedComments, comments)
	}

	var post db.Post
	if err := gdb.Where("slug = ?", "java-streams-in-practice").First(&post).Error; err != nil {
		t.Fatalf("expected derived slug for sample post: %v", err)
	}
	if post.ViewCount != 0 {
		t.Fatalf("expected fresh post to have zero views, got %d", post.ViewCount)
	}
}

func TestGenerateSampleDataIsRepeatable(t *testing.T) {
	gdb := setupSampleDataTestDB(t)
	filter := moderation.New(moderation.DefaultTerms)

	if _, err := generateSampleData(gdb, filter); err != nil {
		t.Fatalf("first run: %v", err)
	}
	created, err := generateSampleData(gdb, filter)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected second run to skip existing posts, created %d", created)
	}

	var posts int64
	gdb.Model(&db.Post{}).Count(&posts)
	if int(posts) != len(samplePosts) {
		t.Fatalf("expected %d posts after rerun, got %d", len(samplePosts), posts)
	}
}
