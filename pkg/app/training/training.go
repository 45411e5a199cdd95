// Package training fits the disaster classifier on a labelled CSV and
// publishes it as a new run of an experiment.
package training

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/app/dataset"
	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/classifier"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	MetaName = "meta.yaml"

	modelTag = "Logistic Regression"
	runTag   = "Re-train"
)

var ErrNoTrainingRows = errors.New("dataset has no usable rows")

// StoreResolver picks the artifact store that serves a locator scheme.
type StoreResolver interface {
	Store(scheme string) (model.ArtifactStore, error)
}

type Options struct {
	// Target is the experiment to publish into. Its run id is ignored.
	Target      model.Locator
	DatasetPath string
	Load        dataset.LoadOptions
	Classifier  classifier.Config
}

// RunMeta is written next to the model directory of every run.
type RunMeta struct {
	RunID        string            `yaml:"run_id"`
	ExperimentID string            `yaml:"experiment_id"`
	ArtifactURI  string            `yaml:"artifact_uri"`
	CreatedAt    time.Time         `yaml:"created_at"`
	Tags         map[string]string `yaml:"tags"`
	Params       RunParams         `yaml:"params"`
	Metrics      RunMetrics        `yaml:"metrics"`
}

type RunParams struct {
	MinDF        int     `yaml:"min_df"`
	MaxDF        float64 `yaml:"max_df"`
	NGramRange   [2]int  `yaml:"ngram_range,flow"`
	StopWords    bool    `yaml:"stop_words"`
	C            float64 `yaml:"c"`
	LearningRate float64 `yaml:"learning_rate"`
	MaxIter      int     `yaml:"max_iter"`
	Tolerance    float64 `yaml:"tolerance"`
}

type RunMetrics struct {
	Samples        int     `yaml:"samples"`
	Skipped        int     `yaml:"skipped"`
	VocabularySize int     `yaml:"vocabulary_size"`
	TrainAccuracy  float64 `yaml:"train_accuracy"`
}

type Trainer struct {
	logger *logrus.Logger
	stores StoreResolver

	newRunID func() string
	now      func() time.Time
}

func NewTrainer(logger *logrus.Logger, stores StoreResolver) *Trainer {
	return &Trainer{
		logger:   logger,
		stores:   stores,
		newRunID: NewRunID,
		now:      time.Now,
	}
}

// NewRunID returns a random 32 character hex id.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Run loads the dataset, fits the pipeline and publishes it. The returned
// locator points at the new run.
func (t *Trainer) Run(ctx context.Context, opts Options) (model.Locator, error) {
	t.logger.Info("starting training process")

	ds, err := dataset.Load(ctx, t.logger, opts.DatasetPath, opts.Load)
	if err != nil {
		return model.Locator{}, err
	}
	p, meta, err := t.Fit(ctx, ds, opts.Classifier)
	if err != nil {
		return model.Locator{}, err
	}

	target := opts.Target.WithRun(t.newRunID())
	if err := t.Publish(ctx, target, p, meta); err != nil {
		return model.Locator{}, err
	}
	t.logger.WithField("uri", target.URI()).Info("completed training process")
	return target, nil
}

// Fit trains on every non-missing row of ds.
func (t *Trainer) Fit(ctx context.Context, ds *dataset.Dataset, cfg classifier.Config) (*classifier.Pipeline, RunMeta, error) {
	texts := make([]string, 0, ds.Len())
	labels := make([]model.Label, 0, ds.Len())
	for _, r := range ds.Rows {
		if r.Missing {
			continue
		}
		texts = append(texts, r.Cleaned)
		labels = append(labels, r.Target)
	}
	if len(texts) == 0 {
		return nil, RunMeta{}, ErrNoTrainingRows
	}

	started := time.Now()
	p, err := classifier.Fit(cfg, texts, labels)
	if err != nil {
		return nil, RunMeta{}, fmt.Errorf("fit classifier: %w", err)
	}
	predicted, err := p.Predict(ctx, texts)
	if err != nil {
		return nil, RunMeta{}, err
	}
	correct := 0
	for i := range predicted {
		if predicted[i] == labels[i] {
			correct++
		}
	}

	meta := RunMeta{
		Tags: map[string]string{"model": modelTag, "tag": runTag},
		Params: RunParams{
			MinDF:        cfg.Vectorizer.MinDF,
			MaxDF:        cfg.Vectorizer.MaxDF,
			NGramRange:   [2]int{cfg.Vectorizer.NGramMin, cfg.Vectorizer.NGramMax},
			StopWords:    cfg.Vectorizer.StopWords,
			C:            cfg.Logistic.C,
			LearningRate: cfg.Logistic.LearningRate,
			MaxIter:      cfg.Logistic.MaxIter,
			Tolerance:    cfg.Logistic.Tolerance,
		},
		Metrics: RunMetrics{
			Samples:        len(texts),
			Skipped:        ds.Len() - len(texts),
			VocabularySize: p.Vocabulary().Size(),
			TrainAccuracy:  float64(correct) / float64(len(texts)),
		},
	}
	t.logger.WithFields(logrus.Fields{
		"samples":    len(texts),
		"vocabulary": meta.Metrics.VocabularySize,
		"accuracy":   meta.Metrics.TrainAccuracy,
		"duration":   time.Since(started).String(),
	}).Info("classifier fitted")
	return p, meta, nil
}

// Publish uploads the model artifact and then the run metadata. A run
// without meta.yaml is incomplete.
func (t *Trainer) Publish(ctx context.Context, target model.Locator, p *classifier.Pipeline, meta RunMeta) error {
	if err := target.Validate(); err != nil {
		return err
	}
	store, err := t.stores.Store(target.Scheme)
	if err != nil {
		return err
	}

	var artifact bytes.Buffer
	if err := p.Encode(&artifact); err != nil {
		return fmt.Errorf("encode pipeline: %w", err)
	}
	if err := store.Put(ctx, target.Bucket, target.Prefix()+model.ArtifactName, &artifact); err != nil {
		return fmt.Errorf("upload %s: %w", target.URI(), err)
	}

	meta.RunID = target.Run
	meta.ExperimentID = target.Experiment
	meta.ArtifactURI = target.URI()
	meta.CreatedAt = t.now().UTC()
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode run metadata: %w", err)
	}
	if err := store.Put(ctx, target.Bucket, target.RunPrefix()+MetaName, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload run metadata: %w", err)
	}
	return nil
}

// ReadMeta fetches the metadata of a published run.
func ReadMeta(ctx context.Context, stores StoreResolver, loc model.Locator) (*RunMeta, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	store, err := stores.Store(loc.Scheme)
	if err != nil {
		return nil, err
	}
	body, err := store.Get(ctx, loc.Bucket, loc.RunPrefix()+MetaName)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var meta RunMeta
	if err := yaml.NewDecoder(body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode run metadata: %w", err)
	}
	return &meta, nil
}
