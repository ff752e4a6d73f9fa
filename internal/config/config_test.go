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

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  host: localhost
  port: 3306
  user: app
  password: secret
  name: incidents
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "mock", cfg.ERPNext.Mode)
	assert.False(t, cfg.AI.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  port: 3306
  user: app
  password: s3cret
  name: incidents
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"app:s3cret@tcp(db.internal:3306)/incidents?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
}

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: app
  password: s3cret
  name: incidents
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.internal port=5432 user=app password=s3cret dbname=incidents sslmode=disable",
		cfg.PostgresDSN())
}
