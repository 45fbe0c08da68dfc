package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, TransitionPermissive, cfg.Reports.TransitionPolicy)
	assert.Equal(t, 20, cfg.Reports.DefaultPageSize)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, int64(10*1024*1024), cfg.Uploads.MaxSizeBytes)
	assert.Equal(t, "@hourly", cfg.Exports.CleanupSchedule)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STATUS_TRANSITION_POLICY", " Strict ")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("JWT_EXPIRATION", "not-a-duration")

	cfg := fromViper(v)
	assert.Equal(t, TransitionStrict, cfg.Reports.TransitionPolicy)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
}

func TestLoadConsoleFromEnv(t *testing.T) {
	t.Setenv("STREETVOICE_API_URL", "http://api.test/")
	t.Setenv("STREETVOICE_PAGE_SIZE", "0")
	t.Setenv("STREETVOICE_TIMEOUT", "3s")

	cfg := LoadConsole()
	assert.Equal(t, "http://api.test", cfg.APIURL)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.SessionFile)
}
