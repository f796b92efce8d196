package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "LISTEN_ADDR", "PAGE_SIZE", "PROHIBITED_TERMS", "DATABASE_DRIVER", "CONFIG_FILE", "DATABASE_DSN", "DATABASE_PATH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "data/quillpress.db", cfg.DatabaseDSN)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, []string{"badword1", "badword2", "badword3"}, cfg.ProhibitedTerms)
	assert.Equal(t, time.Minute, cfg.CommentRateWindow)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("PROHIBITED_TERMS", " spam, ,scam ")
	t.Setenv("COMMENT_RATE_WINDOW", "30s")
	t.Setenv("S3_USE_SSL", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, []string{"spam", "scam"}, cfg.ProhibitedTerms)
	assert.Equal(t, 30*time.Second, cfg.CommentRateWindow)
	assert.True(t, cfg.S3DisableSSL)
}

func TestLoadFileOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "quillpress.toml")
	content := `
[pagination]
page_size = 4

[moderation]
prohibited_terms = ["alpha", "beta"]

[uploads]
allowed_extensions = [".png"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PAGE_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.PageSize)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.ProhibitedTerms)
	assert.Equal(t, []string{".png"}, cfg.AllowedImageExtensions)
}

func TestLoadFileMissing(t *testing.T) {
	var cfg AppConfig
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "absent.toml"), &cfg))
}

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
