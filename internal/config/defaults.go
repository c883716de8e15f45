package config

const (
	defaultDataDir     = "~/.local/share/shelflink"
	defaultSnapshotDir = "~/.local/share/shelflink/snapshots"
	defaultLogDir      = "~/.local/share/shelflink/logs"

	defaultFeedBaseURL        = "https://api.nytimes.com/svc/books/v3/lists/full-overview.json"
	defaultFeedTimeoutSeconds = 15
	defaultFeedMaxRetries     = 3

	defaultHardcoverURL            = "https://api.hardcover.app/v1/graphql"
	defaultHardcoverTimeoutSeconds = 10
	defaultHardcoverMaxRetries     = 3

	defaultStage1Threshold = 85
	defaultStage2Threshold = 94
	defaultMaxCandidates   = 2000
	defaultWorkers         = 1

	defaultGateMinWeeks          = 26
	defaultGateMinRatingCoverage = 0.90
	defaultGateMinSeriesCoverage = 0.90
	defaultGateMinJoinRate       = 0.80
	defaultGateSampleSize        = 1000

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			SnapshotDir: defaultSnapshotDir,
			LogDir:      defaultLogDir,
		},
		Feed: Feed{
			BaseURL:        defaultFeedBaseURL,
			TimeoutSeconds: defaultFeedTimeoutSeconds,
			MaxRetries:     defaultFeedMaxRetries,
		},
		Hardcover: Hardcover{
			URL:            defaultHardcoverURL,
			TimeoutSeconds: defaultHardcoverTimeoutSeconds,
			MaxRetries:     defaultHardcoverMaxRetries,
		},
		Matching: Matching{
			Stage1Threshold: defaultStage1Threshold,
			Stage2Threshold: defaultStage2Threshold,
			MaxCandidates:   defaultMaxCandidates,
			Workers:         defaultWorkers,
		},
		Gate: Gate{
			MinWeeks:          defaultGateMinWeeks,
			MinRatingCoverage: defaultGateMinRatingCoverage,
			MinSeriesCoverage: defaultGateMinSeriesCoverage,
			MinJoinRate:       defaultGateMinJoinRate,
			SampleSize:        defaultGateSampleSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
