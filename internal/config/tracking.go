package config

import "os"

const (
	EnvTrackingEndpoint   = "SAGERELAY_TRACKING_ENDPOINT"
	EnvTrackingExperiment = "SAGERELAY_TRACKING_EXPERIMENT"
)

// TrackingConfig holds the optional experiment tracking endpoint. An empty
// endpoint disables tracking entirely.
type TrackingConfig struct {
	Endpoint   string `toml:"endpoint"`
	Experiment string `toml:"experiment"`
}

// Finalize applies environment variable overrides. There are no required
// fields; tracking is opt-in.
func (c *TrackingConfig) Finalize() error {
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *TrackingConfig) Merge(overlay *TrackingConfig) {
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Experiment != "" {
		c.Experiment = overlay.Experiment
	}
}

func (c *TrackingConfig) loadEnv() {
	if v := os.Getenv(EnvTrackingEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvTrackingExperiment); v != "" {
		c.Experiment = v
	}
}
