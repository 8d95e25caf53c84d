package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.RestURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.rest_url must be an absolute URL, got %q", c.API.RestURL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}

	if c.Snapshot.DefaultDepth < 1 {
		return errors.New("snapshot.default_depth must be >= 1")
	}

	if c.Ranker.TopN < 0 {
		return errors.New("ranker.top_n must be >= 0")
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}
	if c.Poller.Concurrency < 1 {
		return errors.New("poller.concurrency must be >= 1")
	}
	for i, m := range c.Poller.Markets {
		if strings.Count(m, "-") != 1 {
			return fmt.Errorf("poller.markets[%d] %q must look like BASIS-CODE", i, m)
		}
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be > 0, got %gx%g", c.Chart.Width, c.Chart.Height)
	}

	if c.Metrics.Addr != "" {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
		if c.Metrics.Path == HealthPath {
			return fmt.Errorf("metrics.path %q is reserved for the health endpoint", c.Metrics.Path)
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps a log.level value to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
	return level, nil
}
