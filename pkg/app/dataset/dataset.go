package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/textnorm"
	"github.com/sirupsen/logrus"
)

const (
	TextColumn   = "text"
	TargetColumn = "target"
)

var ErrMissingColumn = errors.New("dataset is missing a required column")

// Row is one labelled example. Missing is set when the text cell is empty.
type Row struct {
	Text    string
	Cleaned string
	Target  model.Label
	Missing bool
}

type Dataset struct {
	Rows []Row
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

func (d *Dataset) Cleaned() []string {
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Cleaned
	}
	return out
}

func (d *Dataset) Targets() []model.Label {
	out := make([]model.Label, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Target
	}
	return out
}

// Slice returns rows [from, to) clamped to the dataset bounds.
func (d *Dataset) Slice(from, to int) *Dataset {
	if from > len(d.Rows) {
		from = len(d.Rows)
	}
	if to > len(d.Rows) {
		to = len(d.Rows)
	}
	return &Dataset{Rows: d.Rows[from:to]}
}

type LoadOptions struct {
	Retries    int
	RetryDelay time.Duration
	// Normalizer cleans every text; the package default is used when nil.
	Normalizer *textnorm.Normalizer
}

// Load reads a CSV with text and target columns, retrying failed reads.
// Every text is normalized on load.
func Load(ctx context.Context, logger *logrus.Logger, path string, opts LoadOptions) (*Dataset, error) {
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ds, err := loadFile(path, opts.Normalizer)
		if err == nil {
			logger.WithFields(logrus.Fields{"path": path, "rows": ds.Len()}).Info("dataset loaded")
			return ds, nil
		}
		lastErr = err
		if errors.Is(err, ErrMissingColumn) {
			break
		}
		logger.WithError(err).WithFields(logrus.Fields{
			"path":    path,
			"attempt": attempt,
		}).Warn("failed to load dataset")
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(opts.RetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("load dataset %s: %w", path, lastErr)
}

func loadFile(path string, n *textnorm.Normalizer) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return ParseWith(f, n)
}

// Parse reads CSV records with the default normalizer.
func Parse(r io.Reader) (*Dataset, error) {
	return ParseWith(r, nil)
}

// ParseWith reads CSV records and cleans every text with n; extra columns
// are ignored.
func ParseWith(r io.Reader, n *textnorm.Normalizer) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	textIdx, targetIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case TextColumn:
			textIdx = i
		case TargetColumn:
			targetIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TextColumn)
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TargetColumn)
	}

	ds := &Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if textIdx >= len(record) || targetIdx >= len(record) {
			return nil, fmt.Errorf("line %d: short record", line)
		}
		target, err := strconv.Atoi(strings.TrimSpace(record[targetIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid target %q", line, record[targetIdx])
		}
		text := record[textIdx]
		ds.Rows = append(ds.Rows, Row{
			Text:    text,
			Target:  model.Label(target),
			Missing: strings.TrimSpace(text) == "",
		})
	}

	texts := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		texts[i] = row.Text
	}
	var cleaned []string
	if n != nil {
		cleaned = n.NormalizeAll(texts)
	} else {
		cleaned = textnorm.NormalizeAll(texts)
	}
	for i := range ds.Rows {
		ds.Rows[i].Cleaned = cleaned[i]
	}
	return ds, nil
}
