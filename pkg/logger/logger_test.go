package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriters_RoutesByLevel(t *testing.T) {
	var console, info, errs bytes.Buffer
	log := NewWithWriters(slog.LevelInfo, &console, &info, &errs)

	log.Debug("hidden")
	log.Info("enrolled", slog.String("courseId", "c1"))
	log.Error("statistics update failed")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "enrolled")
	assert.Contains(t, info.String(), `"courseId":"c1"`)
	assert.Contains(t, info.String(), "statistics update failed")
	assert.NotContains(t, errs.String(), "enrolled")
	assert.Contains(t, errs.String(), "statistics update failed")
}

func TestNewWithWriters_HonoursDebugLevel(t *testing.T) {
	var console, info, errs bytes.Buffer
	log := NewWithWriters(slog.LevelDebug, &console, &info, &errs)

	log.Debug("visible")
	assert.Contains(t, console.String(), "visible")
}

func TestNew_CreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := New("warn", dir)
	require.NoError(t, err)
	log.Warn("slow query")

	_, err = os.Stat(filepath.Join(dir, "info.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "error.log"))
	assert.NoError(t, err)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", t.TempDir())
	assert.Error(t, err)
}
