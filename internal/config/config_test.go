package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("API_KEY", "key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "books", cfg.SourceCollection)
	assert.Equal(t, "databaseName.txt", cfg.NameRecordPath)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NAME_RECORD", "redis")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("ADMIN_ORIGINS", "https://admin.example.com, https://ops.example.com,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, RecordRedis, cfg.NameRecord)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.AdminOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 4, cfg.RateLimitBurst)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ADDR", ":9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":7070"
storeDriver: "elastic"
elasticURL: "http://es:9200"
workingPrefix: "stock"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, DriverElastic, cfg.StoreDriver)
	assert.Equal(t, "http://es:9200", cfg.ElasticURL)
	assert.Equal(t, "stock", cfg.WorkingPrefix)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE_TIMEOUT", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "STORE_TIMEOUT")
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("API_KEY", "key")
		_, err := Load("")
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.JWTSecret = "secret"
	valid.APIKey = "key"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }},
		{"unknown record", func(c *Config) { c.NameRecord = "etcd" }},
		{"empty prefix", func(c *Config) { c.WorkingPrefix = "" }},
		{"missing api key", func(c *Config) { c.APIKey = "" }},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }},
		{"postgres without dsn", func(c *Config) { c.DatabaseDSN = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\nLOG_LEVEL=debug\n"), 0o644))

	t.Setenv("DB_DSN", "from_env")
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}
