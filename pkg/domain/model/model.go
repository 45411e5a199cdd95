package model

import (
	"context"
	"io"
	"time"
)

// Label is the class id returned by a classifier: 0 non-disaster, 1 disaster.
type Label int

const (
	LabelNonDisaster Label = 0
	LabelDisaster    Label = 1
)

func (l Label) String() string {
	if l == LabelNonDisaster {
		return "Non-Disastrous"
	}
	return "Disastrous"
}

// ArtifactName is the object written under Locator.Prefix by the trainer.
const ArtifactName = "pipeline.json.zst"

// Scorer is a loaded vectorizer+classifier pair. Implementations must be
// safe for concurrent reads.
type Scorer interface {
	Predict(ctx context.Context, cleaned []string) ([]Label, error)
}

// Loader resolves a Locator into a Scorer.
type Loader interface {
	Load(ctx context.Context, locator Locator) (Scorer, error)
}

// ArtifactStore reads and writes objects of a bucket. Missing objects are
// reported with ErrArtifactNotFound.
type ArtifactStore interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, body io.Reader) error
}

// PredictionEvent describes one served prediction.
type PredictionEvent struct {
	Run       string    `json:"run_id"`
	Raw       string    `json:"text"`
	Cleaned   string    `json:"cleaned_text"`
	Label     Label     `json:"prediction"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}
