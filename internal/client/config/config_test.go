package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080/api/v1/", c.APIBaseURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, "guia_session.db", c.SessionDB)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 10*time.Second, c.BootstrapTimeout)
	assert.Equal(t, 5*time.Second, c.LogoutTimeout)
	assert.Equal(t, 5, c.ToastMaxVisible)
	assert.Equal(t, "auto", c.S3.Region)
	assert.False(t, c.S3.Enabled())
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	t.Setenv("GUIA_API_URL", "http://from-env/api/v1/")
	t.Setenv("GUIA_LOG_LEVEL", "warn")
	t.Setenv("GUIA_S3_BUCKET", "env-bucket")

	path := writeTempJSON(t, "", "", map[string]any{
		"log_level":       "debug",
		"request_timeout": "12s",
	})
	os.Args = []string{"guia", "-c", path, "-a", "http://from-flag/api/v1/"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "http://from-flag/api/v1/", cfg.APIBaseURL, "flag beats env")
	assert.Equal(t, "debug", cfg.LogLevel, "json beats env")
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout, "json beats default")
	assert.Equal(t, "env-bucket", cfg.S3.Bucket)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "guia_session.db", cfg.SessionDB, "untouched default")
}
