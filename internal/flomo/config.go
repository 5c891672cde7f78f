package flomo

import (
	"fmt"
	"strings"
	"time"

	"github.com/roivaz/flomo-mcp/internal/config"
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	APIURL  string
	Timeout time.Duration // zero disables the client-side timeout
}

// Configured reports whether a webhook URL is available.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIURL) != ""
}

func LoadConfig() (Config, error) {
	cfg := Config{
		APIURL: strings.TrimSpace(config.FlomoAPIURL()),
	}

	timeout, err := parseDuration(config.RequestTimeout(), DefaultTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", config.KeyRequestTimeout, err)
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("invalid %s: must not be negative", config.KeyRequestTimeout)
	}
	cfg.Timeout = timeout

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
