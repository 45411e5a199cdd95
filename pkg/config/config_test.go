package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "s3", cfg.Model.Scheme)
	assert.Equal(t, 60*time.Second, cfg.Model.LoadTimeout)
	assert.Equal(t, 500, cfg.Monitoring.ChunkSize)
	assert.Equal(t, 10*time.Second, cfg.Monitoring.SendInterval)
	assert.Equal(t, time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), cfg.Monitoring.Begin.UTC())
	assert.Equal(t, 2, cfg.Training.Classifier.Vectorizer.MinDF)
	assert.InDelta(t, 0.75, cfg.Training.Classifier.Vectorizer.MaxDF, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Training.RetryDelay)
	assert.Equal(t, 60*time.Second, cfg.Client.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9000
model:
  bucket: from-file
  experiment_id: "3"
events:
  kafka:
    host: kafka
    port: "9092"
    topic: predictions
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("MODEL_BUCKET", "from-env")
	t.Setenv("RUN_ID", "legacy-run")
	t.Setenv("SERVER_MAX_INPUT_BYTES", "42")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Server.MaxInputBytes)
	assert.Equal(t, "from-env", cfg.Model.Bucket)
	assert.Equal(t, "3", cfg.Model.Experiment)
	assert.Equal(t, "legacy-run", cfg.Model.Run)
	assert.Equal(t, "s3://from-env/3/legacy-run/artifacts/models/", cfg.Model.Locator().URI())
	assert.Equal(t, "predictions", cfg.Events.Kafka["topic"])
}

func TestLoad_PrefersNewEnvNames(t *testing.T) {
	t.Setenv("MODEL_RUN_ID", "new")
	t.Setenv("RUN_ID", "old")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Model.Run)
}

func TestLoadEnv_HonorsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.env")
	require.NoError(t, os.WriteFile(path, []byte("DISASTERGATE_TEST_RUN=from-env-file\n"), 0o600))
	t.Setenv(EnvFileVar, path)
	t.Setenv("DISASTERGATE_TEST_RUN", "")
	require.NoError(t, os.Unsetenv("DISASTERGATE_TEST_RUN"))

	used, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "from-env-file", os.Getenv("DISASTERGATE_TEST_RUN"))
}

func TestLoadEnv_DefaultsToDotEnv(t *testing.T) {
	t.Setenv(EnvFileVar, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	used, err := LoadEnv()
	assert.Error(t, err)
	assert.Equal(t, DefaultEnvFile, used)
}

func TestTextConfig_Normalizer(t *testing.T) {
	n, err := TextConfig{}.Normalizer()
	require.NoError(t, err)
	assert.Equal(t, "i am happy ", n.Normalize("I'm happy :)"))

	table := filepath.Join(t.TempDir(), "emoticons.txt")
	require.NoError(t, os.WriteFile(table, []byte("<3\n\n"), 0o600))
	n, err = TextConfig{EmoticonsFile: table}.Normalizer()
	require.NoError(t, err)
	assert.Equal(t, "love ", n.Normalize("love <3"))

	_, err = TextConfig{EmoticonsFile: filepath.Join(t.TempDir(), "missing.txt")}.Normalizer()
	assert.Error(t, err)
}
