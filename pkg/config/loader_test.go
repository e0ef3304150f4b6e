package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/todoapi/pkg/config"
)

type serverConfig struct {
	Port    int           `env:"CONFIG_TEST_PORT" envDefault:"3000"`
	Timeout time.Duration `env:"CONFIG_TEST_TIMEOUT" envDefault:"5s"`
	Origins []string      `env:"CONFIG_TEST_ORIGINS" envSeparator:","`
}

type secretConfig struct {
	Secret string `env:"CONFIG_TEST_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Empty(t, cfg.Origins)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_PORT", "8081")
		t.Setenv("CONFIG_TEST_ORIGINS", "http://a.test,http://b.test")

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 8081, cfg.Port)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg secretConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_TIMEOUT", "soon")

		var cfg serverConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[serverConfig](nil), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg secretConfig
		config.MustLoad(&cfg)
	})

	t.Setenv("CONFIG_TEST_SECRET", "s3cret")
	assert.NotPanics(t, func() {
		var cfg secretConfig
		config.MustLoad(&cfg)
		assert.Equal(t, "s3cret", cfg.Secret)
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("CONFIG_TEST_FILE_A=first\nCONFIG_TEST_FILE_B=first\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("CONFIG_TEST_FILE_B=second\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CONFIG_TEST_FILE_A")
		os.Unsetenv("CONFIG_TEST_FILE_B")
	})

	require.NoError(t, config.LoadEnv(first, second))
	assert.Equal(t, "first", os.Getenv("CONFIG_TEST_FILE_A"))
	assert.Equal(t, "second", os.Getenv("CONFIG_TEST_FILE_B"))

	err := config.LoadEnv(filepath.Join(dir, "missing.env"))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
