package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
api:
  environment: production
  port: "9090"
  jwt_signing_key: from-file
  token_ttl: 1h
  allowed_cors_domains:
    - https://painel.example.com
gin:
  mode: release
postgres:
  host: db
  user: cred
  db: credenciamento
cache:
  stats_ttl: 5s
import:
  max_rows: 100
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "production", conf.API.Environment)
	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "from-file", conf.API.JWTSigningKey)
	assert.Equal(t, time.Hour, conf.API.TokenTTL)
	assert.Equal(t, []string{"https://painel.example.com"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, "release", conf.Gin.Mode)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "5432", conf.Postgres.Port)
	assert.Equal(t, 5*time.Second, conf.Cache.StatsTTL)
	assert.Equal(t, 64, conf.Cache.SearchIndexSize)
	assert.Equal(t, 100, conf.Import.MaxRows)
	assert.EqualValues(t, 10<<20, conf.Import.MaxUploadBytes)
	assert.True(t, conf.Import.StrictCPF)
	assert.Equal(t, "changefeed:operators", conf.Realtime.Channel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "7070")
	t.Setenv("API_JWT_SIGNING_KEY", "from-env")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")

	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.API.Port)
	assert.Equal(t, "from-env", conf.API.JWTSigningKey)
	assert.Equal(t, "s3cret", conf.Postgres.Password)
	assert.Contains(t, conf.Postgres.DSN(), "password=s3cret")
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("API_JWT_SIGNING_KEY", "k")

	conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, 5000, conf.Import.MaxRows)
}

func TestLoadRequiresSigningKey(t *testing.T) {
	_, err := Load(writeConfig(t, "api:\n  port: \"1\"\n"))
	assert.ErrorContains(t, err, "jwt_signing_key")
}

func TestAttendanceLocation(t *testing.T) {
	assert.Equal(t, time.UTC, AttendanceConfig{}.Location())
	assert.Equal(t, time.UTC, AttendanceConfig{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, "America/Sao_Paulo", AttendanceConfig{Timezone: "America/Sao_Paulo"}.Location().String())
}
