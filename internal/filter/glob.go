package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// matcher is the subset of glob.Glob the evaluator needs.
type matcher interface {
	Match(string) bool
}

// matchFunc adapts a func(string) bool to matcher.
type matchFunc func(string) bool

func (f matchFunc) Match(s string) bool { return f(s) }

// shellEscaper disables the brace alternation and backslash escapes that
// the glob library supports beyond shell wildcards.
var shellEscaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`, `}`, `\}`)

// compile builds a matcher for a shell pattern. Patterns without character
// classes go to the glob library; bracket expressions need fnmatch rules
// (leading ], trailing -, mixed ranges, unterminated [) that it does not
// parse, so those are translated to a regexp.
func compile(pattern string) matcher {
	if !strings.ContainsRune(pattern, '[') {
		if g, err := glob.Compile(shellEscaper.Replace(pattern)); err == nil {
			return g
		}
	}
	return matchFunc(regexp.MustCompile(translate(pattern)).MatchString)
}

func compileAll(patterns []string) []matcher {
	out := make([]matcher, len(patterns))
	for i, p := range patterns {
		out[i] = compile(p)
	}
	return out
}

// neverMatch is a character class with no members.
const neverMatch = `[^\x00-\x{10FFFF}]`

// translate converts a shell pattern into an anchored regular expression.
// Every literal rune is emitted escaped, so the result always compiles.
func translate(pattern string) string {
	p := []rune(pattern)
	var b strings.Builder
	b.WriteString(`(?s)^`)

	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end := classEnd(p, i+1)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(translateClass(p[i+1 : end]))
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(`$`)
	return b.String()
}

// classEnd returns the index of the ] closing a class that starts at i, or
// -1 when the class is unterminated. A ] right after [ or [! is a member.
func classEnd(p []rune, i int) int {
	if i < len(p) && p[i] == '!' {
		i++
	}
	if i < len(p) && p[i] == ']' {
		i++
	}
	for ; i < len(p); i++ {
		if p[i] == ']' {
			return i
		}
	}
	return -1
}

// translateClass converts the body of a bracket expression. Reversed
// ranges such as z-a contribute nothing.
func translateClass(body []rune) string {
	negate := len(body) > 0 && body[0] == '!'
	if negate {
		body = body[1:]
	}

	var members strings.Builder
	for i := 0; i < len(body); i++ {
		lo := body[i]
		if i+2 < len(body) && body[i+1] == '-' {
			hi := body[i+2]
			i += 2
			if lo <= hi {
				fmt.Fprintf(&members, `\x{%x}-\x{%x}`, lo, hi)
			}
			continue
		}
		fmt.Fprintf(&members, `\x{%x}`, lo)
	}

	switch {
	case members.Len() == 0 && negate:
		return `.`
	case members.Len() == 0:
		return neverMatch
	case negate:
		return `[^` + members.String() + `]`
	default:
		return `[` + members.String() + `]`
	}
}
