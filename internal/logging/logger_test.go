package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerWritesToFile(t *testing.T) {
	Close()
	defer Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	l := Init(Info, path, "")
	l.Info("hello %s", "world")
	l.Debug("should be filtered out")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello world")
	require.NotContains(t, string(data), "should be filtered out")
}

func TestLNoopBeforeInit(t *testing.T) {
	Close()
	// Must not panic even though Init was never called.
	L().Info("no-op")
}

func TestParseLevelClamps(t *testing.T) {
	require.Equal(t, Trace, ParseLevel(-5))
	require.Equal(t, Critical, ParseLevel(99))
	require.Equal(t, Warn, ParseLevel(int(Warn)))
}
