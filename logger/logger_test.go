package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/op/go-logging"
	"github.com/sessiontodo/todo/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromConfig(t *testing.T) {
	tests := map[config.LogLevel]logging.Level{
		config.Debug:  logging.DEBUG,
		config.Info:   logging.INFO,
		config.Notice: logging.NOTICE,
		config.Warn:   logging.WARNING,
		config.Error:  logging.ERROR,
	}
	for in, want := range tests {
		got, err := LevelFromConfig(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := LevelFromConfig("verbose")
	assert.Error(t, err)
}

func TestInitLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODO_LOG_FOLDER", dir)

	InitLogger(logging.INFO)
	defer CloseLogger()

	Infof("hello %s", "file")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO - hello file")
}
