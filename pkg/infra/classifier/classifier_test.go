package classifier

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permissive() Config {
	cfg := DefaultConfig()
	cfg.Vectorizer = VectorizerConfig{MinDF: 1, MaxDF: 1, NGramMin: 1, NGramMax: 1}
	return cfg
}

var (
	disasterDocs = []string{
		"wildfire evacuation ordered",
		"wildfire smoke evacuation",
		"earthquake evacuation now",
		"flood evacuation wildfire",
	}
	calmDocs = []string{
		"lovely sunny picnic",
		"sunny beach picnic",
		"happy birthday picnic",
		"lovely happy beach",
	}
)

func toyCorpus(repeat int) ([]string, []model.Label) {
	var texts []string
	var labels []model.Label
	for r := 0; r < repeat; r++ {
		for _, d := range disasterDocs {
			texts = append(texts, d)
			labels = append(labels, model.LabelDisaster)
		}
		for _, d := range calmDocs {
			texts = append(texts, d)
			labels = append(labels, model.LabelNonDisaster)
		}
	}
	return texts, labels
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"cd", "e1", "hello", "world_x"}, tokenize("a b cd e1 Hello, world_x 9"))
	assert.Empty(t, tokenize(" "))
}

func TestNgrams(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "a b", "b c"}, ngrams([]string{"a", "b", "c"}, 1, 2))
	assert.Equal(t, []string{"a b"}, ngrams([]string{"a", "b"}, 2, 2))
}

func TestVectorizer_FitAndTransform(t *testing.T) {
	v := NewVectorizer(VectorizerConfig{MinDF: 1, MaxDF: 1, NGramMin: 1, NGramMax: 1})
	require.NoError(t, v.Fit([]string{"aa bb", "aa cc"}))

	assert.Equal(t, map[string]int{"aa": 0, "bb": 1, "cc": 2}, v.Vocabulary)
	assert.InDelta(t, 1.0, v.IDF[0], 1e-9)
	assert.InDelta(t, math.Log(3.0/2.0)+1, v.IDF[1], 1e-9)

	vec := v.Transform("aa bb zz")
	require.Len(t, vec, 2)
	assert.Equal(t, 0, vec[0].Index)
	assert.Equal(t, 1, vec[1].Index)
	var norm float64
	for _, f := range vec {
		norm += f.Value * f.Value
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
	assert.Empty(t, v.Transform("zz yy"))
}

func TestVectorizer_DocumentFrequencyPruning(t *testing.T) {
	v := NewVectorizer(VectorizerConfig{MinDF: 2, MaxDF: 0.75, NGramMin: 1, NGramMax: 1})
	require.NoError(t, v.Fit([]string{"common rare", "common shared", "common shared", "common other"}))
	assert.True(t, v.Contains("shared"))
	assert.False(t, v.Contains("rare"), "below min_df")
	assert.False(t, v.Contains("common"), "above max_df")
}

func TestVectorizer_StopWordsAndBigrams(t *testing.T) {
	v := NewVectorizer(VectorizerConfig{MinDF: 1, MaxDF: 1, NGramMin: 1, NGramMax: 2, StopWords: true})
	assert.Equal(t, []string{"forest", "burning", "forest burning"}, v.Terms("the forest is burning"))
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Fit(DefaultConfig(), []string{"a"}, []model.Label{0, 1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Fit(DefaultConfig(), []string{"aa", "bb"}, []model.Label{1, 1})
	assert.ErrorIs(t, err, ErrSingleClass)

	_, err = Fit(DefaultConfig(), []string{"the of", "and the"}, []model.Label{0, 1})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestPipeline_SeparatesToyCorpus(t *testing.T) {
	texts, labels := toyCorpus(1)
	p, err := Fit(permissive(), texts, labels)
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), []string{"wildfire evacuation", "sunny picnic"})
	require.NoError(t, err)
	assert.Equal(t, []model.Label{model.LabelDisaster, model.LabelNonDisaster}, got)

	train, err := p.Predict(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, labels, train)
}

func TestPipeline_DefaultConfig(t *testing.T) {
	texts, labels := toyCorpus(2)
	p, err := Fit(DefaultConfig(), texts, labels)
	require.NoError(t, err)
	assert.True(t, p.Vocabulary().Contains("wildfire evacuation"))

	got, err := p.Predict(context.Background(), []string{"wildfire evacuation ordered", "happy birthday picnic", ""})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, model.LabelDisaster, got[0])
	assert.Equal(t, model.LabelNonDisaster, got[1])
}

func TestPipeline_Deterministic(t *testing.T) {
	texts, labels := toyCorpus(1)
	a, err := Fit(permissive(), texts, labels)
	require.NoError(t, err)
	b, err := Fit(permissive(), texts, labels)
	require.NoError(t, err)
	assert.Equal(t, a.Classifier.Weights, b.Classifier.Weights)
	assert.Equal(t, a.Classifier.Intercept, b.Classifier.Intercept)
}

func TestPipeline_CancelledContext(t *testing.T) {
	texts, labels := toyCorpus(1)
	p, err := Fit(permissive(), texts, labels)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Predict(ctx, []string{"wildfire"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_NotLoaded(t *testing.T) {
	var p *Pipeline
	_, err := p.Predict(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, model.ErrModelNotLoaded)
}

func TestCodec_RoundTrip(t *testing.T) {
	texts, labels := toyCorpus(1)
	p, err := Fit(permissive(), texts, labels)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.Vectorizer.Vocabulary, decoded.Vectorizer.Vocabulary)
	assert.Equal(t, p.Classes, decoded.Classes)

	inputs := []string{"wildfire evacuation", "sunny picnic", "unknown words"}
	want, err := p.PredictProba(context.Background(), inputs)
	require.NoError(t, err)
	got, err := decoded.PredictProba(context.Background(), inputs)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not zstd")))
	assert.Error(t, err)
}

func TestDecode_RejectsInconsistentArtifacts(t *testing.T) {
	cases := map[string]func(p *Pipeline){
		"index past idf": func(p *Pipeline) {
			for term := range p.Vectorizer.Vocabulary {
				p.Vectorizer.Vocabulary[term] = len(p.Vectorizer.IDF)
				return
			}
		},
		"negative index": func(p *Pipeline) {
			for term := range p.Vectorizer.Vocabulary {
				p.Vectorizer.Vocabulary[term] = -1
				return
			}
		},
		"duplicate index": func(p *Pipeline) {
			for term, idx := range p.Vectorizer.Vocabulary {
				if idx != 0 {
					p.Vectorizer.Vocabulary[term] = 0
					return
				}
			}
		},
		"weights shorter than idf": func(p *Pipeline) {
			p.Classifier.Weights = p.Classifier.Weights[:1]
		},
		"empty ngram range": func(p *Pipeline) {
			p.Vectorizer.Config.NGramMin = 0
		},
		"missing classifier": func(p *Pipeline) {
			p.Classifier = nil
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			texts, labels := toyCorpus(1)
			p, err := Fit(permissive(), texts, labels)
			require.NoError(t, err)
			corrupt(p)

			var buf bytes.Buffer
			require.NoError(t, p.Encode(&buf))
			_, err = Decode(&buf)
			assert.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}
