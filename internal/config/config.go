package config

import "time"

// Config is the root configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Ranker   RankerConfig   `yaml:"ranker"`
	Poller   PollerConfig   `yaml:"poller"`
	Chart    ChartConfig    `yaml:"chart"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig holds exchange REST settings. Only public endpoints are used.
type APIConfig struct {
	RestURL   string        `yaml:"rest_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// SnapshotConfig holds market snapshot settings.
type SnapshotConfig struct {
	DefaultDepth int `yaml:"default_depth"` // Orderbook depth used when a caller passes 0
}

// RankerConfig holds defaults for the top-by-volume listing.
type RankerConfig struct {
	TopN          int    `yaml:"top_n"`
	UseBaseVolume *bool  `yaml:"use_base_volume"`
	Basis         string `yaml:"basis"` // Empty means every basis
}

// PollerConfig holds price poller settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	Markets     []string      `yaml:"markets"`
}

// ChartConfig holds price chart settings.
type ChartConfig struct {
	Window int     `yaml:"window"` // Rolling mean window, <= 1 disables smoothing
	Width  float64 `yaml:"width"`  // Inches
	Height float64 `yaml:"height"` // Inches
	Output string  `yaml:"output"`
}

// MetricsConfig holds Prometheus settings. An empty Addr disables the endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// BaseVolume reports whether ranking uses base volume. Defaults to true.
func (r RankerConfig) BaseVolume() bool {
	if r.UseBaseVolume == nil {
		return true
	}
	return *r.UseBaseVolume
}
