package filter

import (
	"slices"
	"testing"

	"image-tagger/internal/tagstore"
)

func newFixture() *tagstore.Store {
	s := tagstore.New()
	s.SetImage("a", []string{"cat", "outdoor"})
	s.SetImage("b", []string{"cat", "file.jpg"})
	s.SetImage("c", []string{"cat"})
	s.SetImage("d", []string{"dog", "outdoor"})
	s.SetImage("e", nil)
	s.SetImage("f", []string{"-x", "]", "a[xyz"})
	s.SetImage("g", []string{"b"})
	return s
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantBranch  Branch
		wantTerms   []string
		wantInclude []string
		wantExclude []string
	}{
		{
			name:        "comma list",
			query:       "cat, *.jpg",
			wantBranch:  BranchAnd,
			wantInclude: []string{"cat", "*.jpg"},
		},
		{
			name:        "exclusion glued to include",
			query:       "cat!(outdoor)",
			wantBranch:  BranchAnd,
			wantInclude: []string{"cat"},
			wantExclude: []string{"outdoor"},
		},
		{
			name:        "several exclusions",
			query:       "!( out* ) cat !(dog)",
			wantBranch:  BranchAnd,
			wantInclude: []string{"cat"},
			wantExclude: []string{"out*", "dog"},
		},
		{
			name:       "or terms",
			query:      "cat OR dog",
			wantBranch: BranchOr,
			wantTerms:  []string{"cat", "dog"},
		},
		{
			name:        "or keeps exclusions parsed",
			query:       "cat OR dog !(outdoor)",
			wantBranch:  BranchOr,
			wantTerms:   []string{"cat", "dog"},
			wantExclude: []string{"outdoor"},
		},
		{
			name:       "or inside a word splits the word",
			query:      "FLOOR, ORANGE",
			wantBranch: BranchOr,
			wantTerms:  []string{"FLO", ",", "ANGE"},
		},
		{
			name:       "or without spaces",
			query:      "dogORcat",
			wantBranch: BranchOr,
			wantTerms:  []string{"dog", "cat"},
		},
		{
			name:       "leading or is dropped",
			query:      "ORANGE",
			wantBranch: BranchOr,
			wantTerms:  []string{"ANGE"},
		},
		{
			name:        "lowercase or is a pattern",
			query:       "cat or dog",
			wantBranch:  BranchAnd,
			wantInclude: []string{"cat or dog"},
		},
		{
			name:        "unbalanced exclusion degrades to a pattern",
			query:       "cat, !(outdoor",
			wantBranch:  BranchAnd,
			wantInclude: []string{"cat", "!(outdoor"},
		},
		{
			name:        "empty pieces discarded",
			query:       " , cat,, ",
			wantBranch:  BranchAnd,
			wantInclude: []string{"cat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.query)
			if q.Branch != tt.wantBranch {
				t.Errorf("Branch = %q, want %q", q.Branch, tt.wantBranch)
			}
			if !slices.Equal(q.Terms, tt.wantTerms) {
				t.Errorf("Terms = %q, want %q", q.Terms, tt.wantTerms)
			}
			if !equalOrEmpty(q.Include, tt.wantInclude) {
				t.Errorf("Include = %q, want %q", q.Include, tt.wantInclude)
			}
			if !equalOrEmpty(q.Exclude, tt.wantExclude) {
				t.Errorf("Exclude = %q, want %q", q.Exclude, tt.wantExclude)
			}
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "blank query returns all", query: "   ", want: []string{"a", "b", "c", "d", "e", "f", "g"}},
		{name: "single tag", query: "cat", want: []string{"a", "b", "c"}},
		{name: "and with wildcard", query: "cat,*.jpg", want: []string{"b"}},
		{name: "exclusion", query: "cat!(outdoor)", want: []string{"b", "c"}},
		{name: "exclusion with wildcard", query: "cat !(*.jpg) !(out*)", want: []string{"c"}},
		{name: "exclusion only", query: "!(cat)", want: []string{"d", "e", "f", "g"}},
		{name: "question mark", query: "c?t", want: []string{"a", "b", "c"}},
		{name: "character class", query: "[cd]og", want: []string{"d"}},
		{name: "negated class", query: "[!c]at", want: []string{}},
		{name: "or exact", query: "cat OR dog", want: []string{"a", "b", "c", "d"}},
		{name: "or is not wildcard", query: "c* OR d*", want: []string{}},
		{name: "or ignores exclusions", query: "dog OR file.jpg !(outdoor)", want: []string{"b", "d"}},
		{name: "case sensitive", query: "CAT", want: []string{}},
		{name: "braces are literal", query: "{cat,dog}", want: []string{}},
		{name: "unterminated class is a literal bracket", query: "[cat", want: []string{}},
		{name: "unterminated class before wildcard", query: "a[*", want: []string{"f"}},
		{name: "trailing dash in class is literal", query: "[a-]x", want: []string{"f"}},
		{name: "leading bracket in class is a member", query: "[]a]", want: []string{"f"}},
		{name: "leading bracket in negated class", query: "[!]a]", want: []string{"g"}},
		{name: "or exact single character", query: "b OR ]", want: []string{"f", "g"}},
		{name: "only separators keeps all", query: ",,,", want: []string{"a", "b", "c", "d", "e", "f", "g"}},
	}

	s := newFixture()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(s, tt.query)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Apply(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestApplyBracesLiteralTag(t *testing.T) {
	s := tagstore.New()
	s.SetImage("x", []string{"{cat,dog}", `back\slash`})

	if got := Apply(s, "{cat*"); !slices.Equal(got, []string{"x"}) {
		t.Errorf("Apply({cat*) = %v", got)
	}
	if got := Apply(s, `back\slash`); !slices.Equal(got, []string{"x"}) {
		t.Errorf(`Apply(back\slash) = %v`, got)
	}
}

func TestEvaluatePreservesStoreOrder(t *testing.T) {
	s := tagstore.New()
	s.SetImage("img10", []string{"x"})
	s.SetImage("img2", []string{"x"})

	got := Evaluate(s, Parse("x"))
	if !slices.Equal(got, []string{"img10", "img2"}) {
		t.Errorf("Evaluate() = %v, want store order", got)
	}
}

func TestMatchesEmptyTagList(t *testing.T) {
	if Parse("cat").Matches(nil) {
		t.Error("include pattern matched an untagged image")
	}
	if !Parse("!(cat)").Matches(nil) {
		t.Error("pure exclusion should keep untagged images")
	}
	if Parse("cat OR dog").Matches(nil) {
		t.Error("OR matched an untagged image")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		pattern string
		match   []string
		reject  []string
	}{
		{pattern: "[a-]", match: []string{"a", "-"}, reject: []string{"b", "]"}},
		{pattern: "[]a]", match: []string{"]", "a"}, reject: []string{"b", "[]a]"}},
		{pattern: "[!]a]", match: []string{"b", "-"}, reject: []string{"]", "a"}},
		{pattern: "[a-cx]", match: []string{"b", "x"}, reject: []string{"d", "-"}},
		{pattern: "[z-a]", reject: []string{"a", "z", "-"}},
		{pattern: "[!z-a]", match: []string{"a", "z"}, reject: []string{"ab"}},
		{pattern: "a[*", match: []string{"a[", "a[xyz"}, reject: []string{"ax"}},
		{pattern: "[?*]", match: []string{"?", "*"}, reject: []string{"a"}},
		{pattern: "x.[ab]+", match: []string{"x.a+"}, reject: []string{"xxa+", "x.aa"}},
		{pattern: "*\n", match: []string{"line\n"}, reject: []string{"line\n\n!"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m := compile(tt.pattern)
			for _, s := range tt.match {
				if !m.Match(s) {
					t.Errorf("%q did not match %q", tt.pattern, s)
				}
			}
			for _, s := range tt.reject {
				if m.Match(s) {
					t.Errorf("%q matched %q", tt.pattern, s)
				}
			}
		})
	}
}

func equalOrEmpty(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}

func BenchmarkApply(b *testing.B) {
	s := tagstore.New()
	for i := 0; i < 1000; i++ {
		s.SetImage(string(rune('a'+i%26))+"img", []string{"cat", "outdoor", "file.jpg"})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Apply(s, "cat, *.jpg !(indoor)")
	}
}
