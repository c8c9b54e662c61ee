package observability

import (
	"testing"

	"github.com/smallbiznis/catalog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfigUsesRuntimeLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	runtime, err := config.NewRuntimeHolderFromPaths(t.TempDir())
	require.NoError(t, err)
	runtime.Set(config.Runtime{LogLevel: "warn"})

	cfg := LoadConfig(config.Config{Environment: "production"}, runtime)
	assert.Equal(t, "catalog", cfg.ServiceName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Debug())
	assert.False(t, cfg.OtelEnabled)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")

	cfg := LoadConfig(config.Config{AppName: "catalog-api"}, nil)
	assert.Equal(t, "catalog-api", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug())
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
}

func TestWatchLogLevel(t *testing.T) {
	runtime, err := config.NewRuntimeHolderFromPaths(t.TempDir())
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	WatchLogLevel(runtime, level, zap.NewNop())

	runtime.Set(config.Runtime{LogLevel: "debug"})
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	runtime.Set(config.Runtime{LogLevel: "nonsense"})
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}
