package classifier

import (
	"errors"
	"math"
	"sort"
)

var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain no usable terms after pruning")

// VectorizerConfig controls term extraction and document-frequency pruning.
type VectorizerConfig struct {
	MinDF     int     `json:"min_df" mapstructure:"min_df"`
	MaxDF     float64 `json:"max_df" mapstructure:"max_df"`
	NGramMin  int     `json:"ngram_min" mapstructure:"ngram_min"`
	NGramMax  int     `json:"ngram_max" mapstructure:"ngram_max"`
	StopWords bool    `json:"stop_words" mapstructure:"stop_words"`
}

func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MinDF:     2,
		MaxDF:     0.75,
		NGramMin:  1,
		NGramMax:  2,
		StopWords: true,
	}
}

type feature struct {
	Index int
	Value float64
}

// Vectorizer is a TF-IDF encoder with a vocabulary sorted alphabetically.
type Vectorizer struct {
	Config     VectorizerConfig `json:"config"`
	Vocabulary map[string]int   `json:"vocabulary"`
	IDF        []float64        `json:"idf"`
}

func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	return &Vectorizer{Config: cfg}
}

func (v *Vectorizer) analyze(doc string) []string {
	tokens := tokenize(doc)
	if v.Config.StopWords {
		tokens = removeStopWords(tokens)
	}
	return ngrams(tokens, v.Config.NGramMin, v.Config.NGramMax)
}

// Fit learns the vocabulary and the smoothed inverse document frequencies.
func (v *Vectorizer) Fit(docs []string) error {
	n := len(docs)
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.analyze(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	maxCount := float64(n)
	if v.Config.MaxDF > 0 && v.Config.MaxDF < 1 {
		maxCount = v.Config.MaxDF * float64(n)
	}
	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.Config.MinDF || float64(count) > maxCount {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return ErrEmptyVocabulary
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return nil
}

// Transform encodes doc as an L2-normalised sparse vector ordered by index.
// Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(doc string) []feature {
	counts := make(map[int]float64)
	for _, term := range v.analyze(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}
	vec := make([]feature, 0, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := tf * v.IDF[idx]
		norm += w * w
		vec = append(vec, feature{Index: idx, Value: w})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Index < vec[j].Index })
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i].Value /= norm
		}
	}
	return vec
}

// Contains reports whether term is part of the fitted vocabulary.
func (v *Vectorizer) Contains(term string) bool {
	_, ok := v.Vocabulary[term]
	return ok
}

// Terms returns the analyzed terms of doc, before vocabulary lookup.
func (v *Vectorizer) Terms(doc string) []string {
	return v.analyze(doc)
}

func (v *Vectorizer) Size() int {
	return len(v.IDF)
}
