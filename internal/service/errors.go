package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// 错误类别，调用方通过 errors.Is 判断。
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrDependency = errors.New("dependency violated")
	ErrStorage    = errors.New("storage failure")
)

var (
	ErrPostNotFound     = fmt.Errorf("post %w", ErrNotFound)
	ErrAuthorNotFound   = fmt.Errorf("author %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	ErrSlugTaken = fmt.Errorf("slug is already in use: %w", ErrConflict)

	ErrAuthorMissing   = fmt.Errorf("author does not exist: %w", ErrDependency)
	ErrCategoryMissing = fmt.Errorf("category does not exist: %w", ErrDependency)
	ErrAuthorInUse     = fmt.Errorf("author is referenced by posts: %w", ErrDependency)
	ErrCategoryInUse   = fmt.Errorf("category is referenced by posts: %w", ErrDependency)
)

// ValidationError 汇总字段级别的校验失败。
type ValidationError struct {
	Fields map[string]string
	// Term 是评论命中的屏蔽词。
	Term string
}

func (e *ValidationError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("comment contains a prohibited term: %s", e.Term)
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" "+e.Fields[key])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// PartialFailureError is returned when an image reached the upload store but
// the post mutation that should reference it failed. Reference must be
// deleted by the caller.
type PartialFailureError struct {
	Reference string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("uploaded image %s is orphaned: %v", e.Reference, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// translateStoreError maps driver and gorm failures onto the error kinds.
// Errors that already carry a kind pass through untouched.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrDependency, ErrStorage} {
		if errors.Is(err, kind) {
			return err
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrSlugTaken, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrDependency, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func isForeignKeyViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}
