package textnorm

import (
	"regexp"
	"strings"
)

// contractionPattern matches a word carrying one or two apostrophe segments
// ("don't", "can't've") as well as the clipped "'cause". Both the ASCII and
// the typographic apostrophe are accepted.
var contractionPattern = regexp.MustCompile(`[a-z0-9]*['’][a-z]+(?:['’][a-z]+)?`)

// irregularContractions cannot be derived from the suffix rules below.
var irregularContractions = map[string]string{
	"ain't":     "are not",
	"can't":     "cannot",
	"can't've":  "cannot have",
	"shan't":    "shall not",
	"shan't've": "shall not have",
	"won't":     "will not",
	"won't've":  "will not have",
	"'cause":    "because",
	"let's":     "let us",
	"ma'am":     "madam",
	"o'clock":   "of the clock",
	"y'all":     "you all",
	"y'all're":  "you all are",
	"y'all've":  "you all have",
	"he's":      "he is",
	"she's":     "she is",
	"it's":      "it is",
	"that's":    "that is",
	"there's":   "there is",
	"here's":    "here is",
	"what's":    "what is",
	"where's":   "where is",
	"when's":    "when is",
	"who's":     "who is",
	"why's":     "why is",
	"how's":     "how is",
	"how'd":     "how did",
	"where'd":   "where did",
	"why'd":     "why did",
	"what'd":    "what did",
}

// suffixExpansions apply to any word once the irregular table missed.
// "'s" is left alone: on an arbitrary word it is usually a possessive.
var suffixExpansions = map[string]string{
	"re": " are",
	"ve": " have",
	"ll": " will",
	"d":  " would",
	"m":  " am",
}

// expandContractions expects lowercase input.
func expandContractions(s string) string {
	if !strings.ContainsAny(s, "'’") {
		return s
	}
	return contractionPattern.ReplaceAllStringFunc(s, expandWord)
}

func expandWord(word string) string {
	w := strings.ReplaceAll(word, "’", "'")
	if full, ok := irregularContractions[w]; ok {
		return full
	}
	head, tail, _ := strings.Cut(w, "'")
	if head == "" {
		return word
	}
	second := ""
	if i := strings.IndexByte(tail, '\''); i >= 0 {
		tail, second = tail[:i], tail[i+1:]
	}
	expanded, ok := expandSuffix(head, tail)
	if !ok {
		return word
	}
	if second != "" {
		more, ok := suffixExpansions[second]
		if !ok {
			return word
		}
		expanded += more
	}
	return expanded
}

func expandSuffix(head, suffix string) (string, bool) {
	if suffix == "t" && strings.HasSuffix(head, "n") && len(head) > 1 {
		return head[:len(head)-1] + " not", true
	}
	if more, ok := suffixExpansions[suffix]; ok {
		return head + more, true
	}
	return "", false
}
