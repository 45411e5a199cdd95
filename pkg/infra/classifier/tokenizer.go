package classifier

import (
	"strings"
	"unicode"
)

// tokenize splits text into words of two or more letters or digits.
// Anything else acts as a delimiter.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, strings.ToLower(f))
		}
	}
	return tokens
}

// ngrams returns the word n-grams of tokens for every n in [min, max],
// unigrams first, joined with a single space.
func ngrams(tokens []string, min, max int) []string {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	out := make([]string, 0, len(tokens)*(max-min+1))
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func removeStopWords(tokens []string) []string {
	kept := tokens[:0]
	for _, t := range tokens {
		if _, stop := englishStopWords[t]; !stop {
			kept = append(kept, t)
		}
	}
	return kept
}
