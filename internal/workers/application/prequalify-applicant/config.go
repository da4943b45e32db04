// internal/workers/application/prequalify-applicant/config.go
package prequalifyapplicant

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: 15 * time.Minute,
	}
}
