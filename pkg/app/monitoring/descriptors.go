package monitoring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Vocabulary answers membership for out-of-vocabulary shares.
type Vocabulary interface {
	Contains(term string) bool
}

// Descriptors are the per-text features compared between datasets.
type Descriptors struct {
	TextLength    []float64
	OOVShare      []float64
	NonLetterChar []float64
	Missing       int
}

func describe(texts []string, missing []bool, vocab Vocabulary) Descriptors {
	d := Descriptors{
		TextLength:    make([]float64, 0, len(texts)),
		OOVShare:      make([]float64, 0, len(texts)),
		NonLetterChar: make([]float64, 0, len(texts)),
	}
	for i, text := range texts {
		if missing[i] {
			d.Missing++
			continue
		}
		d.TextLength = append(d.TextLength, float64(utf8.RuneCountInString(text)))
		d.OOVShare = append(d.OOVShare, oovShare(text, vocab))
		d.NonLetterChar = append(d.NonLetterChar, nonLetterShare(text))
	}
	return d
}

// oovShare is the percentage of words absent from vocab.
func oovShare(text string, vocab Vocabulary) float64 {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if len(words) == 0 {
		return 0
	}
	oov := 0
	for _, w := range words {
		if !vocab.Contains(w) {
			oov++
		}
	}
	return 100 * float64(oov) / float64(len(words))
}

// nonLetterShare is the percentage of characters that are neither letters
// nor white space.
func nonLetterShare(text string) float64 {
	total, other := 0, 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			other++
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(other) / float64(total)
}
