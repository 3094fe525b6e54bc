package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{})
		log.SetLevel(log.InfoLevel)
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, Init("chatty", "", false))
	})

	t.Run("production uses JSON", func(t *testing.T) {
		require.NoError(t, Init("debug", "console", true))
		assert.Equal(t, log.DebugLevel, log.GetLevel())
		assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)
	})

	t.Run("writes to the log file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "server.log")
		require.NoError(t, Init("info", file, false))

		log.Info("hello from the test")

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello from the test")
	})
}
