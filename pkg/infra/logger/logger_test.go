package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_DIR", dir)
	t.Setenv("LOG_LEVEL", "debug")

	l, err := NewLogger("server")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("run_id", "abc").Info("model loaded")
	l.Close()

	data, err := os.ReadFile(filepath.Join(dir, "server.log"))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "model loaded", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_Validation(t *testing.T) {
	t.Setenv("LOG_DIR", t.TempDir())
	_, err := NewLogger("../escape")
	assert.Error(t, err)
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, logrus.WarnLevel, levelFromEnv("LOG_LEVEL", logrus.InfoLevel))
	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, logrus.InfoLevel, levelFromEnv("LOG_LEVEL", logrus.InfoLevel))
	assert.Equal(t, logrus.ErrorLevel, levelFromEnv("LOG_UNSET_LEVEL", logrus.ErrorLevel))
}

func TestAsyncConsoleHook_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	hook := NewAsyncConsoleHook(&buf, logrus.WarnLevel, 16)
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.AddHook(hook)

	l.Info("chunk sent")
	l.Warn("reference is empty")
	hook.Close()

	assert.NotContains(t, buf.String(), "chunk sent")
	assert.Contains(t, buf.String(), "reference is empty")
	assert.Zero(t, hook.Dropped())
}
