package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
)

var (
	ErrEmptyDataset   = errors.New("training dataset is empty")
	ErrLengthMismatch = errors.New("texts and labels have different lengths")
	ErrSingleClass    = errors.New("training labels must contain exactly two classes")
)

// Pipeline is a fitted TF-IDF vectorizer followed by a binary logistic
// regression. It is read-only after Fit and safe for concurrent Predict.
type Pipeline struct {
	Vectorizer *Vectorizer    `json:"vectorizer"`
	Classifier *Logistic      `json:"classifier"`
	Classes    [2]model.Label `json:"classes"`
}

var _ model.Scorer = (*Pipeline)(nil)

type Config struct {
	Vectorizer VectorizerConfig `json:"vectorizer" mapstructure:"vectorizer"`
	Logistic   LogisticConfig   `json:"logistic" mapstructure:"logistic"`
}

func DefaultConfig() Config {
	return Config{
		Vectorizer: DefaultVectorizerConfig(),
		Logistic:   DefaultLogisticConfig(),
	}
}

// Fit trains a pipeline on already normalised texts.
func Fit(cfg Config, texts []string, labels []model.Label) (*Pipeline, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("%w: %d texts, %d labels", ErrLengthMismatch, len(texts), len(labels))
	}
	classes, err := twoClasses(labels)
	if err != nil {
		return nil, err
	}

	vec := NewVectorizer(cfg.Vectorizer)
	if err := vec.Fit(texts); err != nil {
		return nil, err
	}
	x := make([][]feature, len(texts))
	y := make([]float64, len(texts))
	for i, text := range texts {
		x[i] = vec.Transform(text)
		if labels[i] == classes[1] {
			y[i] = 1
		}
	}
	clf := NewLogistic(cfg.Logistic)
	clf.Fit(x, y, vec.Size())

	return &Pipeline{Vectorizer: vec, Classifier: clf, Classes: classes}, nil
}

func twoClasses(labels []model.Label) ([2]model.Label, error) {
	set := make(map[model.Label]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	if len(set) != 2 {
		return [2]model.Label{}, fmt.Errorf("%w: got %d", ErrSingleClass, len(set))
	}
	out := make([]model.Label, 0, 2)
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return [2]model.Label{out[0], out[1]}, nil
}

// Predict returns one label per cleaned text.
func (p *Pipeline) Predict(ctx context.Context, cleaned []string) ([]model.Label, error) {
	probs, err := p.PredictProba(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	labels := make([]model.Label, len(probs))
	for i, pr := range probs {
		if pr >= 0.5 {
			labels[i] = p.Classes[1]
		} else {
			labels[i] = p.Classes[0]
		}
	}
	return labels, nil
}

// PredictProba returns the probability of the second class for each text.
func (p *Pipeline) PredictProba(ctx context.Context, cleaned []string) ([]float64, error) {
	if p == nil || p.Vectorizer == nil || p.Classifier == nil {
		return nil, model.ErrModelNotLoaded
	}
	out := make([]float64, len(cleaned))
	for i, text := range cleaned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.Classifier.Probability(p.Vectorizer.Transform(text))
	}
	return out, nil
}

// Vocabulary exposes the fitted vocabulary for drift monitoring.
func (p *Pipeline) Vocabulary() *Vectorizer {
	return p.Vectorizer
}

// Contains reports whether term is in the fitted vocabulary.
func (p *Pipeline) Contains(term string) bool {
	return p.Vectorizer != nil && p.Vectorizer.Contains(term)
}
