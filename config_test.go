package checkedmem

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CHECKEDMEM_ENV", "production")
	t.Setenv("CHECKEDMEM_DEBUG", "false")
	t.Setenv("CHECKEDMEM_MOVER", " Unrolled ")
	t.Setenv("CHECKEDMEM_LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "unrolled", cfg.Mover)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("debug", func(t *testing.T) {
		t.Setenv("CHECKEDMEM_DEBUG", "sometimes")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "checkedmem: parse env")
	})
	t.Run("log level", func(t *testing.T) {
		t.Setenv("CHECKEDMEM_LOG_LEVEL", "LOUD")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestConfig_Production(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{Env: "development", Debug: true}, false},
		{Config{Env: "test", Debug: true}, false},
		{Config{Env: "production", Debug: true}, true},
		{Config{Env: "PROD", Debug: true}, true},
		{Config{Env: "development", Debug: false}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.Production(), "%+v", tt.cfg)
	}
}
