package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "brief.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// unsetEnv removes key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Defaults.Server.Port, cfg.Server.Port)
	assert.Equal(t, Defaults.Server.Host, cfg.Server.Host)
	assert.Equal(t, ConnectionMongoDB, cfg.Database.Connection)
	assert.Equal(t, "Brief", cfg.Database.Database)
	assert.Equal(t, "brief-cluster.mongodb.net", cfg.Database.Host)
	assert.Equal(t, 1, cfg.Database.Retry.MaxTries)
	assert.Equal(t, "X-Request-ID", cfg.RequestID.Header)
	assert.Equal(t, "uuid", cfg.RequestID.Generator)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnectTimeoutDuration())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `server:
  port: 9000
  host: 127.0.0.1
database:
  connection: sqlite
  database: /tmp/brief.db
  retry:
    max_tries: 5
logging:
  format: json
  level: debug
request_id:
  generator: ulid
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address())
	assert.Equal(t, ConnectionSQLite, cfg.Database.Connection)
	assert.Equal(t, "/tmp/brief.db", cfg.Database.Database)
	assert.Equal(t, 5, cfg.Database.Retry.MaxTries)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "ulid", cfg.RequestID.Generator)
}

func TestLoad_CredentialsFromEnvironment(t *testing.T) {
	t.Setenv(EnvDatabaseUser, "brief-app")
	t.Setenv(EnvDatabasePassword, "s3cr3t")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "brief-app", cfg.Database.User)
	assert.Equal(t, "s3cr3t", cfg.Database.Password)
}

func TestLoad_PrefixedEnvironmentOverrides(t *testing.T) {
	t.Setenv("BRIEF_SERVER_PORT", "7070")
	t.Setenv("BRIEF_DATABASE_DATABASE", "BriefStaging")
	t.Setenv("BRIEF_DATABASE_RETRY_MAX_TRIES", "3")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "BriefStaging", cfg.Database.Database)
	assert.Equal(t, 3, cfg.Database.Retry.MaxTries)
}

func TestLoad_DotEnvFile(t *testing.T) {
	unsetEnv(t, EnvDatabaseUser)
	unsetEnv(t, EnvDatabasePassword)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DB_USERNAME=dotenv-user\nDB_PASSWORD=dotenv-pass\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "dotenv-user", cfg.Database.User)
	assert.Equal(t, "dotenv-pass", cfg.Database.Password)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"port zero", "server:\n  port: 0\n", "invalid server port"},
		{"port negative", "server:\n  port: -1\n", "invalid server port"},
		{"port too large", "server:\n  port: 70000\n", "invalid server port"},
		{"unknown connection", "database:\n  connection: oracle\n", "unsupported database connection"},
		{"unknown log format", "logging:\n  format: xml\n", "invalid logging format"},
		{"unknown log level", "logging:\n  level: chatty\n", "invalid logging level"},
		{"unknown generator", "request_id:\n  generator: counter\n", "invalid request_id.generator"},
		{"mixed cors origins", "cors:\n  allowed_origins: ['*', 'https://brief.app']\n", "cannot mix wildcard"},
		{"wildcard with credentials", "cors:\n  allowed_origins: ['*']\n  allow_credentials: true\n", "allow_credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AppliesDefaultsForZeroValues(t *testing.T) {
	cfg := &AppConfig{Server: ServerConfig{Port: 8080}}

	require.NoError(t, validate(cfg))

	assert.Equal(t, Defaults.Database.Connection, cfg.Database.Connection)
	assert.Equal(t, Defaults.Database.Database, cfg.Database.Database)
	assert.Equal(t, Defaults.Database.RetryMaxTries, cfg.Database.Retry.MaxTries)
	assert.Equal(t, Defaults.Logging.Format, cfg.Logging.Format)
	assert.Equal(t, Defaults.RequestID.MaxLength, cfg.RequestID.MaxLength)
	assert.Equal(t, Defaults.Server.ShutdownTimeout, cfg.Server.ShutdownTimeout)
}

func TestValidate_NormalizesMetricsPath(t *testing.T) {
	cfg := &AppConfig{Server: ServerConfig{Port: 8080}, Metrics: MetricsConfig{Path: "internal/metrics"}}

	require.NoError(t, validate(cfg))
	assert.Equal(t, "/internal/metrics", cfg.Metrics.Path)
}

func TestGet(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Same(t, cfg, Get())
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "1.4", Version())
}
