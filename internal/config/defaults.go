package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL         = "https://bittrex.com/api/v1.1"
	DefaultAPITimeout      = 30 * time.Second
	DefaultDepth           = 20
	DefaultTopN            = 10
	DefaultPollInterval    = time.Minute
	DefaultPollConcurrency = 4
	DefaultPollTimeout     = 10 * time.Second
	DefaultChartWidth      = 10.0
	DefaultChartHeight     = 5.0
	DefaultChartOutput     = "price.png"
	DefaultMetricsPath     = "/metrics"
	HealthPath             = "/health" // Served next to metrics; not configurable
	DefaultLogLevel        = "info"
)

func (c *Config) applyDefaults() {
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.Snapshot.DefaultDepth == 0 {
		c.Snapshot.DefaultDepth = DefaultDepth
	}

	if c.Ranker.TopN == 0 {
		c.Ranker.TopN = DefaultTopN
	}

	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	if c.Chart.Width == 0 {
		c.Chart.Width = DefaultChartWidth
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = DefaultChartHeight
	}
	if c.Chart.Output == "" {
		c.Chart.Output = DefaultChartOutput
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
