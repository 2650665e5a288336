package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, StorageMySQL, cfg.Storage)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "HTTP_PORT=8080\nSTORAGE=Memory\nJWT_TTL=15m\nBOOK_CACHE_SIZE=notanumber\nCORS_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// already set variables win over the file
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BCRYPT_COST", "12")
	t.Cleanup(func() {
		for _, k := range []string{"STORAGE", "JWT_TTL", "BOOK_CACHE_SIZE", "CORS_ORIGINS"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 1024, cfg.BookCacheSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}
