package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nBACKEND_URL=\"http://api.test/\"\nexport SESSION_TTL=30m\nbroken\n"), 0o600))

	out := defaultValues()
	require.NoError(t, dotEnvFile(path)(out))

	assert.Equal(t, "http://api.test/", out["BACKEND_URL"])
	assert.Equal(t, "30m", out["SESSION_TTL"])
}

func TestJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_port":"9000","rate_limit":30,"nested":{"x":1}}`), 0o600))

	out := defaultValues()
	require.NoError(t, jsonFile(path)(out))

	assert.Equal(t, "9000", out["APP_PORT"])
	assert.Equal(t, "30", out["RATE_LIMIT"])
	_, ok := out["NESTED"]
	assert.False(t, ok)
}

func TestEnvironOnlyTakesAppKeys(t *testing.T) {
	out := defaultValues()
	require.NoError(t, environ([]string{"BACKEND_URL=http://env", "HOME=/root", "S3_BUCKET=imgs", "APP_PORT="})(out))

	assert.Equal(t, "http://env", out["BACKEND_URL"])
	assert.Equal(t, "imgs", out["S3_BUCKET"])
	assert.Equal(t, defaultAppPort, out["APP_PORT"])
	_, ok := out["HOME"]
	assert.False(t, ok)
}

func TestMissingFilesAreSkipped(t *testing.T) {
	out := defaultValues()
	require.NoError(t, jsonFile(filepath.Join(t.TempDir(), "none.json"))(out))
	require.NoError(t, dotEnvFile(filepath.Join(t.TempDir(), ".env"))(out))
	assert.Equal(t, defaultValues(), out)
}

func TestTypedGetters(t *testing.T) {
	Set("BACKEND_URL", "http://api.test///")
	Set("SESSION_TTL", "bogus")
	Set("RATE_LIMIT", "-3")
	Set("CORS_ORIGINS", "http://a.test, http://b.test,")
	Set("DB_DRIVER", "oracle")

	assert.Equal(t, "http://api.test", BackendURL())
	assert.Equal(t, 12*time.Hour, SessionTTL())
	assert.Equal(t, 120, RateLimit())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, CORSOrigins())
	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
}
