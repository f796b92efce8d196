// Package moderation screens reader comments against a prohibited-term list.
package moderation

import "strings"

// DefaultTerms 是未配置时使用的屏蔽词。
var DefaultTerms = []string{"badword1", "badword2", "badword3"}

// Result 描述一次检查的结论。
type Result struct {
	Accepted bool
	// Term 为第一个命中的屏蔽词（小写），仅在 Accepted 为 false 时有值。
	Term string
}

// Filter 按整词匹配屏蔽词，大小写不敏感。
type Filter struct {
	terms map[string]struct{}
}

// New builds a Filter from the given terms. Blank entries are ignored and
// matching is done on the lower-cased form of each term.
func New(terms []string) *Filter {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		normalized := strings.ToLower(strings.TrimSpace(term))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return &Filter{terms: set}
}

// Check splits text on whitespace and rejects it when any token equals a
// prohibited term exactly. The first offending token is reported.
func (f *Filter) Check(text string) Result {
	if f == nil || len(f.terms) == 0 {
		return Result{Accepted: true}
	}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if _, blocked := f.terms[token]; blocked {
			return Result{Accepted: false, Term: token}
		}
	}
	return Result{Accepted: true}
}

// Terms returns the configured terms in no particular order.
func (f *Filter) Terms() []string {
	out := make([]string, 0, len(f.terms))
	for term := range f.terms {
		out = append(out, term)
	}
	return out
}
