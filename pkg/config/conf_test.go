package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, PortDefault, c1.Port)
	assert.Equal(t, CacheTTLDefault, c1.CacheTTL)

	c1.Port = 9090
	c1.DB = "/tmp/buycheck.db"
	c1.RedisAddr = "localhost:6379"

	err = Save(dir, c1)
	assert.NoError(t, err)

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c1.Port, c2.Port)
	assert.Equal(t, c1.DB, c2.DB)
	assert.Equal(t, c1.RedisAddr, c2.RedisAddr)
}

func TestConfig_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".buycheck")
	_, err := ReadOrCreate(dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ConfigFileName))
	assert.NoError(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, &Config{Port: 9000, CacheTTL: time.Minute, DB: "file.db"}))

	t.Setenv("BUYCHECK_PORT", "7070")
	t.Setenv("BUYCHECK_DB", "postgres://localhost/buycheck")
	t.Setenv("BUYCHECK_CACHE_TTL", "30s")

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, 7070, c.Port)
	assert.Equal(t, "postgres://localhost/buycheck", c.DB)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BUYCHECK_PORT", "70000")
	_, err := ReadOrCreate(dir)
	assert.Error(t, err)

	assert.Error(t, Save("", &Config{}))
	assert.Error(t, Save(dir, nil))
	_, err = ReadOrCreate("")
	assert.Error(t, err)
}

func TestGetOrCreateHomeDir_EmptyName(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}
