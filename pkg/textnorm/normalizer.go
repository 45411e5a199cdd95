// Package textnorm holds the text cleaning pipeline shared by the prediction
// server, the training job and the monitoring job. Every component that turns
// raw text into model input must go through Normalize so that training and
// serving see byte-identical features.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator replaces every token removed by the regex stages.
const Separator = " "

// maxPasses bounds the fixpoint loop in Normalize. Residue left by the late
// stages (transliteration, punctuation removal) is gone after two or three
// passes in practice.
const maxPasses = 8

// Normalizer is immutable once built and safe for concurrent use.
type Normalizer struct {
	emoticons *regexp.Regexp
}

type Option func(*Normalizer) error

// WithEmoticons replaces the embedded emoticon table.
func WithEmoticons(tokens []string) Option {
	return func(n *Normalizer) error {
		re, err := compileEmoticons(tokens)
		if err != nil {
			return err
		}
		n.emoticons = re
		return nil
	}
}

func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{emoticons: defaultEmoticons}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, fmt.Errorf("textnorm: %w", err)
		}
	}
	return n, nil
}

var defaultNormalizer = &Normalizer{emoticons: defaultEmoticons}

// Normalize cleans text with the default emoticon table.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}

// NormalizeAll cleans every element of texts, preserving order.
func NormalizeAll(texts []string) []string {
	return defaultNormalizer.NormalizeAll(texts)
}

// Normalize runs the cleaning pass until its output stops changing, which
// makes Normalize(Normalize(x)) == Normalize(x) hold for every input.
// The empty string maps to itself; input made only of noise maps to a single
// space. The result is never trimmed.
func (n *Normalizer) Normalize(text string) string {
	out := n.pass(text)
	for i := 1; i < maxPasses; i++ {
		next := n.pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (n *Normalizer) NormalizeAll(texts []string) []string {
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = n.Normalize(t)
	}
	return cleaned
}

// pass applies the twelve stages once, in order. Contractions are expanded
// while apostrophes are still present, and transliteration runs after the
// emoticon stage because several emoticons are non-ASCII symbols.
func (n *Normalizer) pass(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = htmlNoisePattern.ReplaceAllLiteralString(text, Separator)
	text = urlPattern.ReplaceAllLiteralString(text, Separator)
	text = emailPattern.ReplaceAllLiteralString(text, Separator)
	text = numericDatePattern.ReplaceAllLiteralString(text, Separator)
	text = monthDatePattern.ReplaceAllLiteralString(text, Separator)
	if n.emoticons != nil {
		text = n.emoticons.ReplaceAllLiteralString(text, Separator)
	}
	text = mentionPattern.ReplaceAllLiteralString(text, Separator)
	text = expandContractions(text)
	text = stripPunctuation(text)
	text = transliterate(text)
	return collapseWhitespace(text)
}
