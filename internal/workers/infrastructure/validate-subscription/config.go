// internal/workers/infrastructure/validate-subscription/config.go
package validatesubscription

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// DemoPrefix marks vendor IDs that skip subscription checks.
	DemoPrefix string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		CacheTTL:   5 * time.Minute,
		DemoPrefix: "demo-",
	}
}
