// Package monitoring computes drift and quality snapshots of the served
// model over a current dataset and stores one metrics row per chunk.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/app/dataset"
	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/database"
	"github.com/sirupsen/logrus"
)

const (
	DefaultChunkSize    = 500
	DefaultSendInterval = 10 * time.Second
)

var ErrNoReference = errors.New("reference dataset is empty")

// Model is a scorer that also exposes its vocabulary.
type Model interface {
	model.Scorer
	Vocabulary
}

type Options struct {
	RunID        string
	ChunkSize    int
	SendInterval time.Duration
	Begin        time.Time
}

type Job struct {
	logger *logrus.Logger
	model  Model
	repo   database.MetricsRepository
	opts   Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewJob(logger *logrus.Logger, m Model, repo database.MetricsRepository, opts Options) *Job {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.SendInterval < 0 {
		opts.SendInterval = 0
	}
	return &Job{
		logger: logger,
		model:  m,
		repo:   repo,
		opts:   opts,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// snapshot holds what is compared for one side of a row.
type snapshot struct {
	desc   Descriptors
	scores Scores
}

func (j *Job) snapshot(ctx context.Context, ds *dataset.Dataset) (snapshot, error) {
	missing := make([]bool, ds.Len())
	for i, r := range ds.Rows {
		missing[i] = r.Missing
	}
	cleaned := ds.Cleaned()
	predictions, err := j.model.Predict(ctx, cleaned)
	if err != nil {
		return snapshot{}, model.NewPredictionError(err)
	}
	return snapshot{
		desc:   describe(cleaned, missing, j.model),
		scores: score(ds.Targets(), predictions),
	}, nil
}

// Run processes current in chunks and returns the number of rows stored.
// Sends are paced so that at most one row is written per SendInterval.
func (j *Job) Run(ctx context.Context, reference, current *dataset.Dataset) (int, error) {
	if reference == nil || reference.Len() == 0 {
		return 0, ErrNoReference
	}
	ref, err := j.snapshot(ctx, reference)
	if err != nil {
		return 0, fmt.Errorf("reference snapshot: %w", err)
	}

	chunks := (current.Len() + j.opts.ChunkSize - 1) / j.opts.ChunkSize
	var lastSend time.Time
	sent := 0
	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		chunk := current.Slice(i*j.opts.ChunkSize, (i+1)*j.opts.ChunkSize)
		cur, err := j.snapshot(ctx, chunk)
		if err != nil {
			return sent, fmt.Errorf("chunk %d: %w", i, err)
		}
		row := j.row(j.opts.Begin.AddDate(0, 0, i), ref, cur)

		if sent > 0 {
			if wait := j.opts.SendInterval - j.now().Sub(lastSend); wait > 0 {
				if err := j.sleep(ctx, wait); err != nil {
					return sent, err
				}
			}
		}
		if err := j.repo.Insert(ctx, row); err != nil {
			return sent, fmt.Errorf("chunk %d: %w", i, err)
		}
		lastSend = j.now()
		sent++

		j.logger.WithFields(logrus.Fields{
			"chunk":     i,
			"rows":      chunk.Len(),
			"timestamp": row.Timestamp,
		}).Info("metrics sent")
	}
	return sent, nil
}

func (j *Job) row(ts time.Time, ref, cur snapshot) *database.MetricsRow {
	_, lengthP := KSTest(ref.desc.TextLength, cur.desc.TextLength)
	_, oovP := KSTest(ref.desc.OOVShare, cur.desc.OOVShare)
	_, nonLetterP := KSTest(ref.desc.NonLetterChar, cur.desc.NonLetterChar)
	return &database.MetricsRow{
		Timestamp:                  ts,
		RunID:                      j.opts.RunID,
		CurrentMissingCount:        cur.desc.Missing,
		ReferenceMissingCount:      ref.desc.Missing,
		CurrentTextLengthMean:      mean(cur.desc.TextLength),
		ReferenceTextLengthMean:    mean(ref.desc.TextLength),
		CurrentOOVMean:             mean(cur.desc.OOVShare),
		ReferenceOOVMean:           mean(ref.desc.OOVShare),
		CurrentNonLetterCharMean:   mean(cur.desc.NonLetterChar),
		ReferenceNonLetterCharMean: mean(ref.desc.NonLetterChar),
		NonLetterCharDriftScore:    nonLetterP,
		OOVDriftScore:              oovP,
		TextLengthDriftScore:       lengthP,
		CurrentAccuracyScore:       cur.scores.Accuracy,
		ReferenceAccuracyScore:     ref.scores.Accuracy,
		CurrentPrecisionScore:      cur.scores.Precision,
		ReferencePrecisionScore:    ref.scores.Precision,
		CurrentRecallScore:         cur.scores.Recall,
		ReferenceRecallScore:       ref.scores.Recall,
		CurrentF1Score:             cur.scores.F1,
		ReferenceF1Score:           ref.scores.F1,
	}
}
