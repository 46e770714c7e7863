package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourceDir, cfg.Source.Kind)
	assert.Equal(t, "storage/analytics", cfg.Source.Dir)
	assert.Equal(t, 2, cfg.Server.AskRate)
	assert.Equal(t, 10, cfg.Server.AskBurst)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  allowedOrigins: ["https://reports.example.com"]
source:
  kind: mysql
database:
  host: db
  user: app
  password: from-file
  name: reports
ai:
  model: gpt-4o-mini
`)
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://reports.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "app:from-env@tcp(db:3306)/reports?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "host=db port=5432 user=app password=from-env dbname=reports sslmode=disable", cfg.PostgresDSN())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [oops"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "source:\n  kind: ftp\n"))
	assert.ErrorContains(t, err, "unknown source kind")

	_, err = Load(writeConfig(t, "source:\n  kind: minio\n"))
	assert.ErrorContains(t, err, "minio")

	_, err = Load(writeConfig(t, "source:\n  kind: postgres\n"))
	assert.ErrorContains(t, err, "postgres source needs")
}
