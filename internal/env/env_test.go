package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Host    string        `env:"TEST_HOST" default:"localhost"`
	Port    int           `env:"TEST_PORT" default:"8080"`
	Enabled bool          `env:"TEST_ENABLED" default:"true"`
	Timeout time.Duration `env:"TEST_TIMEOUT" default:"2500ms"`
	NoDef   string        `env:"TEST_NO_DEF"`
	Nested  nestedConfig
}

type nestedConfig struct {
	Name string `env:"TEST_NESTED_NAME" default:"inner"`
}

type validatedConfig struct {
	Port int `env:"TEST_PORT"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return assert.AnError
	}
	return nil
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_HOST", "example.com")
	t.Setenv("TEST_PORT", "9090")
	t.Setenv("TEST_ENABLED", "false")
	t.Setenv("TEST_TIMEOUT", "1m")
	t.Setenv("TEST_NO_DEF", "foo")
	t.Setenv("TEST_NESTED_NAME", "outer")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, "foo", cfg.NoDef)
	assert.Equal(t, "outer", cfg.Nested.Name)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"TEST_HOST", "TEST_PORT", "TEST_ENABLED", "TEST_TIMEOUT", "TEST_NO_DEF", "TEST_NESTED_NAME"} {
		unsetEnv(t, k)
	}

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Empty(t, cfg.NoDef)
	assert.Equal(t, "inner", cfg.Nested.Name)
}

func TestLoad_EmptyStringRespected(t *testing.T) {
	unsetEnv(t, "TEST_PORT")
	t.Setenv("TEST_HOST", "")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	// Empty strings count as set
	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TEST_PORT", invalid.EnvVar)
	assert.Equal(t, "Port", invalid.Field)
}

func TestLoad_NotStructPointer(t *testing.T) {
	var cfg testConfig
	assert.ErrorAs(t, Load(cfg), &ErrNotStructPointer{})
}

func TestLoad_RunsValidator(t *testing.T) {
	t.Setenv("TEST_PORT", "0")

	var cfg validatedConfig
	assert.ErrorIs(t, Load(&cfg), assert.AnError)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_DOTENV_A=from-file\nTEST_DOTENV_B=from-file\n"), 0o600))

	unsetEnv(t, "TEST_DOTENV_A")
	t.Setenv("TEST_DOTENV_B", "from-env")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { os.Unsetenv("TEST_DOTENV_A") })

	assert.Equal(t, "from-file", os.Getenv("TEST_DOTENV_A"))
	assert.Equal(t, "from-env", os.Getenv("TEST_DOTENV_B"), "existing variables win")
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "") // registers restore
	require.NoError(t, os.Unsetenv(key))
}
