// Package slug derives URL identifiers for posts and keeps them unique.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLength 与 posts.slug 列宽一致。
const MaxLength = 200

// maxSuffix bounds the sequential search so a corrupted table cannot spin forever.
const maxSuffix = 100000

var (
	ErrEmpty     = errors.New("slug cannot be derived from an empty title")
	ErrTaken     = errors.New("slug is already in use")
	ErrTooLong   = fmt.Errorf("slug exceeds %d characters", MaxLength)
	ErrExhausted = errors.New("no free slug suffix available")
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Lookup reports whether a slug is used by any post other than excludeID.
// excludeID 为 0 表示不排除任何文章。
type Lookup interface {
	SlugExists(slug string, excludeID uint) (bool, error)
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(slug string, excludeID uint) (bool, error)

// SlugExists implements Lookup.
func (f LookupFunc) SlugExists(slug string, excludeID uint) (bool, error) {
	return f(slug, excludeID)
}

// Resolver 负责生成候选 slug 并做唯一性预检。
// 预检只是建议性的，最终以数据库唯一索引为准。
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a Resolver backed by lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Derive lower-cases the title and collapses every whitespace run into a
// single hyphen. Punctuation is kept as-is.
func Derive(title string) string {
	trimmed := strings.TrimSpace(title)
	return whitespaceRun.ReplaceAllString(strings.ToLower(trimmed), "-")
}

// Resolve returns the slug to store for a post.
//
// A non-blank provided slug is used verbatim and must be free; a collision
// returns ErrTaken rather than being suffixed. Otherwise the slug is derived
// from the title and made unique with EnsureUnique.
func (r *Resolver) Resolve(title, provided string, excludeID uint) (string, error) {
	if strings.TrimSpace(provided) != "" {
		if err := checkLength(provided); err != nil {
			return "", err
		}
		exists, err := r.lookup.SlugExists(provided, excludeID)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrTaken
		}
		return provided, nil
	}

	candidate := Derive(title)
	if candidate == "" {
		return "", ErrEmpty
	}
	return r.EnsureUnique(candidate, excludeID)
}

// EnsureUnique returns candidate when it is free, otherwise the first free
// candidate-N for N = 1, 2, ... The base is shortened when candidate-N would
// exceed MaxLength.
func (r *Resolver) EnsureUnique(candidate string, excludeID uint) (string, error) {
	if err := checkLength(candidate); err != nil {
		return "", err
	}
	current := candidate
	for n := 1; ; n++ {
		exists, err := r.lookup.SlugExists(current, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return current, nil
		}
		if n > maxSuffix {
			return "", ErrExhausted
		}
		current = withSuffix(candidate, n)
	}
}

// withSuffix appends -n, cutting base runes so the result fits MaxLength.
func withSuffix(base string, n int) string {
	suffix := fmt.Sprintf("-%d", n)
	runes := []rune(base)
	if keep := MaxLength - len(suffix); len(runes) > keep {
		runes = runes[:keep]
	}
	return string(runes) + suffix
}

func checkLength(s string) error {
	if utf8.RuneCountInString(s) > MaxLength {
		return ErrTooLong
	}
	return nil
}
