package config

import (
	"sync"
	"time"
)

type Config struct {
	// CommandTimeout bounds the wait for the hpacucli prompt after a command
	CommandTimeout time.Duration
	// LaunchTimeout bounds the wait for the first hpacucli prompt
	LaunchTimeout time.Duration
	// Sessions is the number of hpacucli processes scraped in parallel
	Sessions int
	// LogicalDriveDetails adds the disk name of every logical drive to the
	// metrics, at the cost of one extra command per logical drive
	LogicalDriveDetails bool
	// InsecureSkipVerify disables TLS verification of the vector log endpoint
	InsecureSkipVerify bool
}

var (
	config *Config
	once   sync.Once
)

func NewConfig(c *Config) {
	once.Do(func() {
		if c != nil {
			config = c
		} else {
			config = &Config{
				CommandTimeout: 30 * time.Second,
				LaunchTimeout:  30 * time.Second,
				Sessions:       1,
			}
		}
	})
}

func GetConfig() *Config {
	if config != nil {
		return config
	}

	NewConfig(nil)
	return config
}
