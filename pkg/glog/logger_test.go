package glog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer Init(DefaultConfig())

	Info("hello", zap.Int("n", 1))
	Warnf("value %d", 2)
	Named("actor").Debug("named")

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, "hello", entries[0].Message)
	require.Equal(t, int64(1), entries[0].ContextMap()["n"])
	require.Equal(t, "value 2", entries[1].Message)
	require.Equal(t, "actor", entries[2].LoggerName)
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleveland.log")
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.PrintConsole = false
	cfg.Level = "warn"
	Init(cfg)
	defer Init(DefaultConfig())

	require.Equal(t, zapcore.WarnLevel, GetLevel())
	Info("dropped")
	Error("kept")
	Stop()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "kept")
	require.NotContains(t, string(data), "dropped")

	SetLogLevel(zapcore.DebugLevel)
	require.Equal(t, zapcore.DebugLevel, GetLevel())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("unknown"))
	require.True(t, ValidLevel("debug"))
	require.False(t, ValidLevel("verbose"))
}

func TestNewWriterDefaults(t *testing.T) {
	w := newWriter("app.log", FileConfig{MaxSize: 10, Compress: true})
	require.Equal(t, 10, w.MaxSize)
	require.Equal(t, 100, w.MaxBackups)
	require.Equal(t, 30, w.MaxAge)
	require.True(t, w.Compress)
}
