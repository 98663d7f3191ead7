package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	l, closer, err := New(Options{Level: "WARN", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
	assert.Equal(t, zerolog.WarnLevel, log.Logger.GetLevel())
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	l, _, err := New(Options{Level: "error", Debug: true})
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestNew_FileSink(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })
	path := filepath.Join(t.TempDir(), "app.log")

	_, closer, err := New(Options{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	lg := Component("seed")
	lg.Info().Int("count", 20).Msg("catalog seeded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"seed"`)
	assert.Contains(t, string(data), `"message":"catalog seeded"`)
}

func TestNew_FileSinkRotates(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })
	dir := t.TempDir()

	l, closer, err := New(Options{Level: "info", Format: "json", File: filepath.Join(dir, "app.log"), MaxSizeMB: 1})
	require.NoError(t, err)

	payload := strings.Repeat("x", 1024)
	for i := 0; i < 1200; i++ {
		l.Info().Int("i", i).Str("payload", payload).Msg("filler")
	}
	require.NoError(t, closer.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2, "expected the active file plus a rotated backup")
	for _, e := range entries {
		info, err := e.Info()
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(1024*1024))
	}
}

func TestFileSink_Defaults(t *testing.T) {
	sink := fileSink(Options{File: "app.log"})
	assert.Equal(t, DefaultMaxSizeMB, sink.MaxSize)
	assert.Equal(t, DefaultMaxAgeDays, sink.MaxAge)

	sink = fileSink(Options{File: "app.log", MaxSizeMB: 5, MaxAgeDays: 7})
	assert.Equal(t, 5, sink.MaxSize)
	assert.Equal(t, 7, sink.MaxAge)
}
