package model

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrEmptyPrediction  = errors.New("model returned no labels")
	ErrModelNotLoaded   = errors.New("model not loaded")
)

// ConfigurationError is returned before any I/O when the model location is
// incomplete or cannot be served.
type ConfigurationError struct {
	Field  string
	Reason string
}

func NewConfigurationError(field string) error {
	return &ConfigurationError{Field: field, Reason: "is required"}
}

func NewConfigurationErrorf(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("model configuration: %s %s", e.Field, e.Reason)
}

// ArtifactLoadError wraps any failure to fetch or decode the model artifact.
type ArtifactLoadError struct {
	URI string
	Err error
}

func NewArtifactLoadError(uri string, err error) error {
	return &ArtifactLoadError{URI: uri, Err: err}
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load model from %s: %v", e.URI, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// PredictionError is raised when a loaded model fails during inference.
type PredictionError struct {
	Err error
}

func NewPredictionError(err error) error {
	return &PredictionError{Err: err}
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsArtifactLoadError(err error) bool {
	if err == nil {
		return false
	}
	var target *ArtifactLoadError
	return errors.As(err, &target)
}

func IsPredictionError(err error) bool {
	if err == nil {
		return false
	}
	var target *PredictionError
	return errors.As(err, &target)
}
