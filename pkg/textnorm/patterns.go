package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonSpace is a Unicode-aware \S: RE2's \S only excludes ASCII white space.
const nonSpace = `[^\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`

var (
	htmlNoisePattern   = regexp.MustCompile(`&amp;|&lt;|&gt;|\n|\t`)
	urlPattern         = regexp.MustCompile(`https?://` + nonSpace + `+|www\.` + nonSpace + `+`)
	emailPattern       = regexp.MustCompile(nonSpace + `+@` + nonSpace + `+`)
	numericDatePattern = regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)?[-./]\d{1,2}[-./]\d{2,4}`)
	mentionPattern     = regexp.MustCompile(`[@#]` + nonSpace + `+`)

	// "1st of jan", "march 3rd, 2021", "dec 2020", "12-aug-21" ...
	monthDatePattern = regexp.MustCompile(`(?i)(?:\d{1,2})?(?:st|nd|rd|th)?[-./,]?\s?(?:of)?\s?` +
		`(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|` +
		`sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)` +
		`\s?(?:\d{1,2})?(?:st|nd|rd|th)?\s?[-./,]?\s?(?:\d{2,4})?`)
)

// asciiPunctuation is the classic C-locale punctuation set.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isASCIIPunct(r rune) bool {
	return r < 0x80 && strings.ContainsRune(asciiPunctuation, r)
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if isASCIIPunct(r) {
			return -1
		}
		return r
	}, s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// transliterate drops combining marks first so that decomposed and composed
// input end up identical, then maps the remaining runes to their closest
// ASCII spelling.
func transliterate(s string) string {
	if isASCII(s) {
		return s
	}
	// transform.Chain keeps per-call state; build it per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return unidecode.Unidecode(s)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
