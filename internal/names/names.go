// Package names decides whether a configured item name and a bank statement
// description refer to the same thing.
//
// Matching is token based and case-insensitive. Parenthetical account hints
// such as "(Checking)" are stripped from the configured name first. A name
// matches a description when every significant name token appears in the
// description, or when every description token appears in the name (for
// statements that abbreviate). A token appears when it equals another token
// or is a prefix of it at least minPrefix runes long.
package names

import (
	"strings"
	"unicode"
)

const minPrefix = 3

// stopwords never identify a payee.
var stopwords = map[string]bool{
	"a":    true,
	"an":   true,
	"the":  true,
	"and":  true,
	"of":   true,
	"at":   true,
	"to":   true,
	"on":   true,
	"in":   true,
	"by":   true,
	"for":  true,
	"from": true,
	"inc":  true,
	"llc":  true,
	"ltd":  true,
}

// Pattern is a compiled item name.
type Pattern struct {
	Name   string
	Tokens []string
	Hint   string
}

// Compile normalizes name once so it can be matched against many
// descriptions.
func Compile(name string) Pattern {
	return Pattern{
		Name:   name,
		Tokens: Tokens(StripHints(name)),
		Hint:   AccountHint(name),
	}
}

// Empty reports whether the pattern has no significant tokens. Empty
// patterns match nothing.
func (p Pattern) Empty() bool {
	return len(p.Tokens) == 0
}

// Matches reports whether description refers to the pattern's item.
func (p Pattern) Matches(description string) bool {
	if p.Empty() {
		return false
	}
	desc := Tokens(description)
	if len(desc) == 0 {
		return false
	}
	return containsAll(desc, p.Tokens) || containsAll(p.Tokens, desc)
}

// MatchesAccount reports whether account is compatible with the pattern's
// hint. No hint or no account is always compatible.
func (p Pattern) MatchesAccount(account string) bool {
	if p.Hint == "" || strings.TrimSpace(account) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(account), strings.ToLower(p.Hint))
}

// Match is shorthand for Compile(name).Matches(description).
func Match(name, description string) bool {
	return Compile(name).Matches(description)
}

// StripHints removes every parenthesized segment from name.
func StripHints(name string) string {
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// AccountHint returns the trailing parenthesized segment of name, e.g.
// "Checking" for "Rent (Checking)".
func AccountHint(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, ")") {
		return ""
	}
	open := strings.LastIndex(name, "(")
	if open < 0 {
		return ""
	}
	return strings.TrimSpace(name[open+1 : len(name)-1])
}

// Tokens lowercases s, splits it on anything that is not a letter or digit,
// and drops single-rune tokens and stopwords. An ampersand inside a word
// joins its halves, so "AT&T" is the single token "att".
func Tokens(s string) []string {
	fields := strings.FieldsFunc(joinAmpersands(strings.ToLower(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func joinAmpersands(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if r == '&' && i > 0 && i < len(rs)-1 && isWordRune(rs[i-1]) && isWordRune(rs[i+1]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		if !containsToken(haystack, n) {
			return false
		}
	}
	return true
}

func containsToken(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
		if len([]rune(needle)) >= minPrefix && strings.HasPrefix(h, needle) {
			return true
		}
	}
	return false
}
