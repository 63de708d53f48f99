// Package matcher compiles macro templates into reusable text matchers.
//
// A template is the literal reply text of a macro, with zero or more
// {{placeholder}} tokens marking free-form substitution points. A compiled
// Matcher decides whether a piece of agent-written text is the same reply
// modulo placeholder substitution, whitespace and letter case.
package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{\s*[^}]+\s*\}\}`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Matcher is a compiled macro template.
type Matcher struct {
	template string
	re       *regexp.Regexp
}

// Compile builds a Matcher from a macro template.
//
//  1. Every {{...}} placeholder becomes a greedy wildcard (.*).
//  2. Every remaining whitespace run becomes \s*, so literal parts match
//     regardless of spacing.
//  3. The pattern is anchored at both ends and matched case-insensitively.
//
// Template text is substituted into the pattern without escaping, so regexp
// metacharacters in a macro keep their regexp meaning. Macros come from the
// helpdesk's own canned replies, and matching there behaves exactly this way;
// keeping it preserves parity with the macros agents already have. A template
// that does not form a valid pattern (for example an unbalanced parenthesis)
// fails compilation and the error is returned.
func Compile(template string) (*Matcher, error) {
	pattern := placeholderRe.ReplaceAllString(template, "(.*)")
	pattern = whitespaceRe.ReplaceAllString(pattern, `\s*`)

	re, err := regexp.Compile(`(?i)^` + pattern + `$`)
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	return &Matcher{template: template, re: re}, nil
}

// Template returns the original template text.
func (m *Matcher) Template() string { return m.template }

// Matches reports whether text is an instance of the template. The candidate
// text is normalized first: whitespace runs collapse to a single space and
// leading/trailing whitespace is trimmed.
func (m *Matcher) Matches(text string) bool {
	return m.re.MatchString(Normalize(text))
}

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Match is a one-shot helper: compile template and test text against it.
func Match(template, text string) (bool, error) {
	m, err := Compile(template)
	if err != nil {
		return false, err
	}
	return m.Matches(text), nil
}
