package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"yoga", "meditation"}, cfg.Content.DefaultInterests)
	assert.Equal(t, 40, cfg.Content.CommentPageSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("MONGODB_URI", "memory://")
	t.Setenv("TOKEN_TTL", "48h")
	t.Setenv("POSTS_PAGE_SIZE", "15")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_INTERESTS", "surf,climb")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.UseMemoryStore())
	assert.Equal(t, 48*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 15, cfg.Content.PostPageSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"surf", "climb"}, cfg.Content.DefaultInterests)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content:\n  post_page_size: 7\nfacebook:\n  app_id: \"123\"\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Content.PostPageSize)
	assert.Equal(t, "123", cfg.Facebook.AppID)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Content.PostPageSize = 0
	cfg.Auth.TokenTTL = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post_page_size")
	assert.Contains(t, err.Error(), "token_ttl")
}

func TestDatabaseName(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "lighttribe", cfg.DatabaseName())

	cfg.Mongo.URI = "mongodb+srv://user:pw@cluster.example/tribe?retryWrites=true"
	assert.Equal(t, "tribe", cfg.DatabaseName())

	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "fallback"
	assert.Equal(t, "fallback", cfg.DatabaseName())
}
