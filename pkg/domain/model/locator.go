package model

import (
	"fmt"
	"strings"
)

const (
	DefaultScheme = "s3"
	FileScheme    = "file"

	// ArtifactsPath is appended to every run prefix. Stored artifacts depend on it.
	ArtifactsPath = "artifacts/models/"
)

// Locator identifies one trained model inside an experiment store.
type Locator struct {
	Scheme     string `mapstructure:"scheme" yaml:"scheme"`
	Bucket     string `mapstructure:"bucket" yaml:"bucket"`
	Experiment string `mapstructure:"experiment_id" yaml:"experiment_id"`
	Run        string `mapstructure:"run_id" yaml:"run_id"`
}

func NewLocator(bucket, experiment, run string) Locator {
	return Locator{
		Scheme:     DefaultScheme,
		Bucket:     bucket,
		Experiment: experiment,
		Run:        run,
	}
}

// Validate reports the first empty component as a *ConfigurationError.
// An empty scheme is allowed and means DefaultScheme.
func (l Locator) Validate() error {
	switch {
	case strings.TrimSpace(l.Bucket) == "":
		return NewConfigurationError("bucket")
	case strings.TrimSpace(l.Experiment) == "":
		return NewConfigurationError("experiment_id")
	case strings.TrimSpace(l.Run) == "":
		return NewConfigurationError("run_id")
	}
	return nil
}

func (l Locator) SchemeOrDefault() string {
	if l.Scheme == "" {
		return DefaultScheme
	}
	return l.Scheme
}

// Prefix is the object key prefix of the model directory, without scheme and bucket.
func (l Locator) Prefix() string {
	return fmt.Sprintf("%s/%s/%s", l.Experiment, l.Run, ArtifactsPath)
}

// RunPrefix is the object key prefix of the run, used for run metadata.
func (l Locator) RunPrefix() string {
	return fmt.Sprintf("%s/%s/", l.Experiment, l.Run)
}

// URI returns <scheme>://<bucket>/<experiment>/<run>/artifacts/models/.
func (l Locator) URI() string {
	return fmt.Sprintf("%s://%s/%s", l.SchemeOrDefault(), l.Bucket, l.Prefix())
}

func (l Locator) String() string {
	return l.URI()
}

// WithRun returns a copy of l pointing at another run of the same experiment.
func (l Locator) WithRun(run string) Locator {
	l.Run = run
	return l
}
