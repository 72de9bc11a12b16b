package filter

import (
	"regexp"
	"strings"
)

// orKeyword switches a query to exact alternatives wherever it appears,
// including inside a word.
const orKeyword = "OR"

var exclusionRe = regexp.MustCompile(`!\(([^)]+)\)`)

// Branch identifies how a query is evaluated.
type Branch string

const (
	// BranchAnd requires every include pattern to match some tag and no
	// exclude pattern to match any tag.
	BranchAnd Branch = "and"
	// BranchOr matches images carrying any of the terms exactly.
	BranchOr Branch = "or"
)

// Query is a parsed filter expression.
type Query struct {
	Raw     string
	Branch  Branch
	Terms   []string // OR terms, compared exactly
	Include []string // AND glob patterns
	Exclude []string // glob patterns from !(...) groups

	include []matcher
	exclude []matcher
}

// Parse interprets a filter expression. It never fails: text that does not
// form a recognizable construct is treated as plain patterns.
//
//	cat, *.jpg          images tagged cat and some tag matching *.jpg
//	cat !(outdoor)      images tagged cat and no tag matching outdoor
//	cat OR dog          images tagged exactly cat or exactly dog
func Parse(raw string) Query {
	q := Query{Raw: raw, Branch: BranchAnd}
	text := strings.TrimSpace(raw)

	for _, m := range exclusionRe.FindAllStringSubmatch(text, -1) {
		if pattern := strings.TrimSpace(m[1]); pattern != "" {
			q.Exclude = append(q.Exclude, pattern)
		}
	}
	text = exclusionRe.ReplaceAllString(text, "")

	if strings.Contains(text, orKeyword) {
		q.Branch = BranchOr
		q.Terms = splitTrim(strings.Split(text, orKeyword))
		return q
	}

	q.Include = splitTrim(strings.Split(text, ","))
	q.include = compileAll(q.Include)
	q.exclude = compileAll(q.Exclude)
	return q
}

// Matches reports whether an image with the given tags satisfies the query.
func (q Query) Matches(tags []string) bool {
	if q.Branch == BranchOr {
		for _, tag := range tags {
			for _, term := range q.Terms {
				if tag == term {
					return true
				}
			}
		}
		return false
	}

	for _, m := range q.include {
		if !anyTagMatches(m, tags) {
			return false
		}
	}
	for _, m := range q.exclude {
		if anyTagMatches(m, tags) {
			return false
		}
	}
	return true
}

func splitTrim(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func anyTagMatches(m matcher, tags []string) bool {
	for _, tag := range tags {
		if m.Match(tag) {
			return true
		}
	}
	return false
}
