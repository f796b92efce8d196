package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quillpress/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type fixtures struct {
	author   db.Author
	category db.Category
}

func createFixtures(t *testing.T, gdb *gorm.DB) fixtures {
	t.Helper()
	f := fixtures{
		author:   db.Author{Name: "Ada", Email: "ada@example.com"},
		category: db.Category{Name: "Go"},
	}
	if err := gdb.Create(&f.author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	if err := gdb.Create(&f.category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return f
}

func (f fixtures) postInput(title string) PostInput {
	return PostInput{
		Title:      title,
		Body:       "body of " + title,
		AuthorID:   f.author.ID,
		CategoryID: f.category.ID,
	}
}

// steppingClock hands out strictly increasing timestamps.
type steppingClock struct {
	mu   sync.Mutex
	next time.Time
}

func newSteppingClock() *steppingClock {
	return &steppingClock{next: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(time.Minute)
	return now
}

// memoryImages is an in-memory storage.Store.
type memoryImages struct {
	mu       sync.Mutex
	objects  map[string][]byte
	deleted  []string
	storeErr error
	seq      int
}

func newMemoryImages() *memoryImages {
	return &memoryImages{objects: map[string][]byte{}}
}

func (m *memoryImages) Store(data []byte, originalName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return "", m.storeErr
	}
	m.seq++
	ref := fmt.Sprintf("/uploads/%d-%s", m.seq, originalName)
	m.objects[ref] = data
	return ref, nil
}

func (m *memoryImages) Delete(ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[ref]; !ok {
		return errors.New("unknown reference")
	}
	delete(m.objects, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}
