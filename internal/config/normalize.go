package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeed()
	c.normalizeHardcover()
	c.normalizeMatching()
	c.normalizeGate()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SnapshotDir) == "" {
		c.Paths.SnapshotDir = defaultSnapshotDir
	}
	if c.Paths.SnapshotDir, err = expandPath(c.Paths.SnapshotDir); err != nil {
		return fmt.Errorf("paths.snapshot_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeed() {
	c.Feed.APIKey = strings.TrimSpace(c.Feed.APIKey)
	if c.Feed.APIKey == "" {
		if value, ok := os.LookupEnv("NYT_API_KEY"); ok {
			c.Feed.APIKey = strings.TrimSpace(value)
		}
	}
	c.Feed.BaseURL = strings.TrimSpace(c.Feed.BaseURL)
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = defaultFeedBaseURL
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = defaultFeedTimeoutSeconds
	}
	if c.Feed.MaxRetries <= 0 {
		c.Feed.MaxRetries = defaultFeedMaxRetries
	}
}

func (c *Config) normalizeHardcover() {
	c.Hardcover.AuthToken = strings.TrimSpace(c.Hardcover.AuthToken)
	if c.Hardcover.AuthToken == "" {
		if value, ok := os.LookupEnv("HARDCOVER_AUTH_TOKEN"); ok {
			c.Hardcover.AuthToken = strings.TrimSpace(value)
		}
	}
	c.Hardcover.URL = strings.TrimSpace(c.Hardcover.URL)
	if c.Hardcover.URL == "" {
		c.Hardcover.URL = defaultHardcoverURL
	}
	if c.Hardcover.TimeoutSeconds <= 0 {
		c.Hardcover.TimeoutSeconds = defaultHardcoverTimeoutSeconds
	}
	if c.Hardcover.MaxRetries <= 0 {
		c.Hardcover.MaxRetries = defaultHardcoverMaxRetries
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.Stage1Threshold <= 0 {
		c.Matching.Stage1Threshold = defaultStage1Threshold
	}
	if c.Matching.Stage2Threshold <= 0 {
		c.Matching.Stage2Threshold = defaultStage2Threshold
	}
	if c.Matching.MaxCandidates <= 0 {
		c.Matching.MaxCandidates = defaultMaxCandidates
	}
	if c.Matching.Workers <= 0 {
		c.Matching.Workers = defaultWorkers
	}
}

func (c *Config) normalizeGate() {
	if c.Gate.MinWeeks <= 0 {
		c.Gate.MinWeeks = defaultGateMinWeeks
	}
	if c.Gate.MinRatingCoverage <= 0 {
		c.Gate.MinRatingCoverage = defaultGateMinRatingCoverage
	}
	if c.Gate.MinSeriesCoverage <= 0 {
		c.Gate.MinSeriesCoverage = defaultGateMinSeriesCoverage
	}
	if c.Gate.MinJoinRate <= 0 {
		c.Gate.MinJoinRate = defaultGateMinJoinRate
	}
	if c.Gate.SampleSize <= 0 {
		c.Gate.SampleSize = defaultGateSampleSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
