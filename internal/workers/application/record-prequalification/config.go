// internal/workers/application/record-prequalification/config.go
package recordprequalification

import "time"

type Config struct {
	Timeout time.Duration
	// Index is the search index that receives each record.
	Index string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "prequalifications",
	}
}
