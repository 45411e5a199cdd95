package textnorm

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

//go:embed emoticons.txt
var embeddedEmoticons string

var (
	ErrEmptyEmoticonTable = errors.New("emoticon table is empty")
	ErrInvalidEmoticon    = errors.New("invalid emoticon token")
)

// defaultEmoticons is compiled once from the embedded table.
var defaultEmoticons = regexp.MustCompile(mustEmoticonPattern(EmbeddedEmoticons()))

// EmbeddedEmoticons returns a copy of the built-in emoticon tokens, one per
// line of emoticons.txt.
func EmbeddedEmoticons() []string {
	return ParseEmoticons(embeddedEmoticons)
}

// ParseEmoticons splits a table with one token per line. Blank lines are
// skipped.
func ParseEmoticons(table string) []string {
	var tokens []string
	for _, line := range strings.Split(table, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens
}

func compileEmoticons(tokens []string) (*regexp.Regexp, error) {
	pattern, err := emoticonPattern(tokens)
	if err != nil {
		return nil, err
	}
	return regexp.Compile(pattern)
}

func mustEmoticonPattern(tokens []string) string {
	pattern, err := emoticonPattern(tokens)
	if err != nil {
		panic(fmt.Sprintf("textnorm: embedded emoticons: %v", err))
	}
	return pattern
}

// emoticonPattern builds a literal alternation. Tokens are lowercased because
// the pipeline lowercases before the emoticon stage, and longer tokens come
// first so ":-((" is not cut short by ":-(".
func emoticonPattern(tokens []string) (string, error) {
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if err := validateEmoticon(tok); err != nil {
			return "", err
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}
	if len(unique) == 0 {
		return "", ErrEmptyEmoticonTable
	}
	sort.Slice(unique, func(i, j int) bool {
		if len(unique[i]) != len(unique[j]) {
			return len(unique[i]) > len(unique[j])
		}
		return unique[i] < unique[j]
	})
	quoted := make([]string, len(unique))
	for i, tok := range unique {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	return strings.Join(quoted, "|"), nil
}

// validateEmoticon rejects tokens that would erase parts of ordinary words,
// such as "xd" inside "xdr".
func validateEmoticon(tok string) error {
	if tok == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidEmoticon)
	}
	alnumOnly := true
	for _, r := range tok {
		if unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q contains white space", ErrInvalidEmoticon, tok)
		}
		if !(r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			alnumOnly = false
		}
	}
	if alnumOnly {
		return fmt.Errorf("%w: %q has no symbol character", ErrInvalidEmoticon, tok)
	}
	return nil
}
