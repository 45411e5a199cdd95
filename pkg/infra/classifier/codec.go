package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

const formatVersion = 1

var ErrInvalidArtifact = errors.New("invalid pipeline artifact")

type envelope struct {
	Version  int       `json:"version"`
	Pipeline *Pipeline `json:"pipeline"`
}

// Encode writes p as zstd-compressed JSON.
func (p *Pipeline) Encode(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(envelope{Version: formatVersion, Pipeline: p}); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode pipeline: %w", err)
	}
	return enc.Close()
}

// Decode reads a pipeline written by Encode.
func Decode(r io.Reader) (*Pipeline, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var env envelope
	if err := json.NewDecoder(dec).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("unsupported pipeline format version %d", env.Version)
	}
	if err := validate(env.Pipeline); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	return env.Pipeline, nil
}

// validate rejects artifacts that would panic or misbehave at predict time.
func validate(p *Pipeline) error {
	if p == nil || p.Vectorizer == nil || p.Classifier == nil {
		return fmt.Errorf("%w: incomplete artifact", ErrInvalidArtifact)
	}
	v := p.Vectorizer
	if len(v.IDF) != len(v.Vocabulary) || len(p.Classifier.Weights) != len(v.IDF) {
		return fmt.Errorf("%w: vocabulary and weights disagree", ErrInvalidArtifact)
	}
	if v.Config.NGramMin < 1 || v.Config.NGramMax < v.Config.NGramMin {
		return fmt.Errorf("%w: ngram range (%d, %d)", ErrInvalidArtifact, v.Config.NGramMin, v.Config.NGramMax)
	}
	seen := make([]bool, len(v.IDF))
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("%w: term %q has index %d outside [0, %d)", ErrInvalidArtifact, term, idx, len(v.IDF))
		}
		if seen[idx] {
			return fmt.Errorf("%w: index %d is used by more than one term", ErrInvalidArtifact, idx)
		}
		seen[idx] = true
	}
	return nil
}
