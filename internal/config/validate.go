package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. API credentials are checked
// by the commands that need them, so a credential-free config still supports
// offline linkage runs.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateGate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Stage1Threshold < 1 || c.Matching.Stage1Threshold > 100 {
		return errors.New("matching.stage1_threshold must be between 1 and 100")
	}
	if c.Matching.Stage2Threshold < 1 || c.Matching.Stage2Threshold > 100 {
		return errors.New("matching.stage2_threshold must be between 1 and 100")
	}
	if c.Matching.MaxCandidates < 1 {
		return errors.New("matching.max_candidates must be positive")
	}
	if c.Matching.Workers < 1 {
		return errors.New("matching.workers must be positive")
	}
	return nil
}

func (c *Config) validateGate() error {
	if c.Gate.MinWeeks < 1 {
		return errors.New("gate.min_weeks must be positive")
	}
	for name, value := range map[string]float64{
		"gate.min_rating_coverage": c.Gate.MinRatingCoverage,
		"gate.min_series_coverage": c.Gate.MinSeriesCoverage,
		"gate.min_join_rate":       c.Gate.MinJoinRate,
	} {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.Gate.SampleSize < 1 {
		return errors.New("gate.sample_size must be positive")
	}
	return nil
}
