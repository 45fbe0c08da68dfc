package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConsoleConfig configures the admin moderation console.
type ConsoleConfig struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
	PageSize    int
	LogLevel    string
}

// LoadConsole reads STREETVOICE_* variables (and a local .env) for the console.
func LoadConsole() *ConsoleConfig {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STREETVOICE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("API_URL", "http://localhost:8000")
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("TIMEOUT", "15s")
	v.SetDefault("PAGE_SIZE", 20)
	v.SetDefault("LOG_LEVEL", "warn")

	pageSize := v.GetInt("PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 20
	}

	return &ConsoleConfig{
		APIURL:      strings.TrimRight(v.GetString("API_URL"), "/"),
		SessionFile: v.GetString("SESSION_FILE"),
		Timeout:     parseDuration(v.GetString("TIMEOUT"), 15*time.Second),
		PageSize:    pageSize,
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".streetvoice-session.yaml"
	}
	return filepath.Join(home, ".streetvoice", "session.yaml")
}
