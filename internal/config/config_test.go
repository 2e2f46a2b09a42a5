package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Environment: EnvDevelopment},
			Data:    DataConfig{BasePath: "./data", Backend: BackendBadger},
			Server:  ServerConfig{Port: 8080},
			Catalog: CatalogConfig{RequestsPerMinute: 30},
		}
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects unknown environment", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = "staging"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		cfg := valid()
		cfg.Data.Backend = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())

		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("requires a data path for badger", func(t *testing.T) {
		cfg := valid()
		cfg.Data.BasePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("memory backend works without a data path", func(t *testing.T) {
		cfg := valid()
		cfg.Data.Backend = BackendMemory
		cfg.Data.BasePath = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestGetConfigValue(t *testing.T) {
	envFile := map[string]string{"PAGETURN_TEST_KEY": "from-file"}

	t.Run("flag wins", func(t *testing.T) {
		assert.Equal(t, "from-flag", getConfigValue("from-flag", "PAGETURN_TEST_KEY", envFile, "default"))
	})

	t.Run("environment beats env file", func(t *testing.T) {
		t.Setenv("PAGETURN_TEST_KEY", "from-env")
		assert.Equal(t, "from-env", getConfigValue("", "PAGETURN_TEST_KEY", envFile, "default"))
	})

	t.Run("env file beats default", func(t *testing.T) {
		assert.Equal(t, "from-file", getConfigValue("", "PAGETURN_TEST_KEY", envFile, "default"))
	})

	t.Run("default when nothing else is set", func(t *testing.T) {
		assert.Equal(t, "default", getConfigValue("", "PAGETURN_MISSING", nil, "default"))
	})
}

func TestGetTypedConfigValues(t *testing.T) {
	envFile := map[string]string{
		"GOOD_BOOL": "true",
		"BAD_BOOL":  "certainly",
		"GOOD_INT":  "42",
		"BAD_INT":   "forty-two",
		"GOOD_DUR":  "90s",
		"BAD_DUR":   "soon",
	}

	assert.True(t, getBoolConfigValue("GOOD_BOOL", envFile, false))
	assert.False(t, getBoolConfigValue("BAD_BOOL", envFile, false))
	assert.Equal(t, 42, getIntConfigValue("", "GOOD_INT", envFile, 7))
	assert.Equal(t, 7, getIntConfigValue("", "BAD_INT", envFile, 7))
	assert.Equal(t, 90*time.Second, getDurationConfigValue("GOOD_DUR", envFile, time.Minute))
	assert.Equal(t, time.Minute, getDurationConfigValue("BAD_DUR", envFile, time.Minute))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	content := `
# a comment
PAGETURN_ENV=production
PAGETURN_LOG_LEVEL="debug"
PAGETURN_DATA_PATH='/srv/pageturn'
MALFORMED LINE
EMPTY=
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	values := loadEnvFile(path)
	assert.Equal(t, "production", values["PAGETURN_ENV"])
	assert.Equal(t, "debug", values["PAGETURN_LOG_LEVEL"])
	assert.Equal(t, "/srv/pageturn", values["PAGETURN_DATA_PATH"])
	assert.NotContains(t, values, "MALFORMED LINE")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	values := loadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Empty(t, values)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, filepath.Join(home, "pageturn"), expandPath("~/pageturn"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "/srv/pageturn"}}

	assert.Equal(t, filepath.Join("/srv/pageturn", "db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join("/srv/pageturn", "covers"), cfg.CoversPath())
	assert.Equal(t, filepath.Join("/srv/pageturn", "search"), cfg.SearchIndexPath())
}
