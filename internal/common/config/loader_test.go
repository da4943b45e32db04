package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
app:
  name: vendorhub-workers
  environment: test
camunda:
  broker_address: localhost:26500
  plaintext: true
database:
  postgres:
    host: ${TEST_PG_HOST}
    database: vendorhub
    user: vendorhub
  redis:
    address: localhost:6379
  elasticsearch:
    url: http://localhost:9200
workers:
  prequalify-applicant:
    enabled: true
    max_jobs_active: 20
  send-notification:
    enabled: false
prequalification:
  cache_ttl: 60
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_PG_HOST", "pg.internal")

	cfg, err := LoadFromFile(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.True(t, cfg.Camunda.Plaintext)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.Addresses)
	assert.Equal(t, "prequalifications", cfg.Database.Elasticsearch.Index)
	assert.True(t, cfg.Database.Elasticsearch.Enabled())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)

	worker := GetWorkerConfig(cfg, "prequalify-applicant")
	assert.Equal(t, 20, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "prequalify-applicant"))
	assert.False(t, IsWorkerEnabled(cfg, "send-notification"))
	assert.True(t, IsWorkerEnabled(cfg, "validate-subscription"))
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("TEST_PG_HOST", "pg.internal")
	t.Setenv("DATABASE_REDIS_ADDRESS", "redis.internal:6380")
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := LoadFromFile(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Database.Redis.Address)
	assert.Equal(t, "from-env", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectedErr string
	}{
		{
			name:        "missing broker",
			content:     "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n  redis:\n    address: r\n",
			expectedErr: "camunda.broker_address is required",
		},
		{
			name:        "missing postgres host",
			content:     "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    database: d\n    user: u\n  redis:\n    address: r\n",
			expectedErr: "database.postgres.host is required",
		},
		{
			name:        "missing redis",
			content:     "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n",
			expectedErr: "database.redis.address is required",
		},
		{
			name:        "negative cache ttl",
			content:     "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n  redis:\n    address: r\nprequalification:\n  cache_ttl: -1\n",
			expectedErr: "cache_ttl must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=require", p.GetDSN())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
