package crawler

import (
	"errors"
	"fmt"
	"time"

	"procfeed/internal/config"
	"procfeed/internal/logger"
)

// URL manager errors.
var (
	ErrNoSourcesAvailable  = errors.New("no sources available")
	ErrSourceExhausted     = errors.New("all URLs of source failed")
	ErrAllSourcesExhausted = errors.New("all sources exhausted")
)

// URLManager walks configured sources and, within a source, its primary URL followed
// by its backup URLs.
type URLManager struct {
	attemptLog       map[string][]AttemptResult
	sources          []config.SourceConfig
	currentSourceIdx int
	currentURLIdx    int
}

// AttemptResult records the result of a URL fetch attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// Target is one location to ingest from.
type Target struct {
	Source   config.SourceConfig
	Location string
	IsFile   bool
}

// NewURLManager creates a new URL manager over sources.
func NewURLManager(sources []config.SourceConfig) *URLManager {
	return &URLManager{
		sources:    sources,
		attemptLog: make(map[string][]AttemptResult),
	}
}

// NextURL returns the next location of the current source. When the current source
// has no locations left it moves to the next source and returns ErrSourceExhausted.
func (um *URLManager) NextURL() (Target, error) {
	if len(um.sources) == 0 {
		return Target{}, ErrNoSourcesAvailable
	}

	if um.currentSourceIdx >= len(um.sources) {
		return Target{}, fmt.Errorf("%w: %d", ErrAllSourcesExhausted, len(um.sources))
	}

	source := um.sources[um.currentSourceIdx]

	// Local files have a single location
	if source.IsLocalFile() {
		if um.currentURLIdx > 0 {
			um.SkipSource()

			return Target{}, fmt.Errorf("%w: %s", ErrSourceExhausted, source.Name)
		}

		um.currentURLIdx++

		return Target{Source: source, Location: source.File, IsFile: true}, nil
	}

	allURLs := source.GetAllURLs()
	if um.currentURLIdx >= len(allURLs) {
		um.SkipSource()

		return Target{}, fmt.Errorf("%w: %s", ErrSourceExhausted, source.Name)
	}

	url := allURLs[um.currentURLIdx]
	um.currentURLIdx++

	return Target{Source: source, Location: url}, nil
}

// SkipSource moves on to the next source.
func (um *URLManager) SkipSource() {
	um.currentSourceIdx++
	um.currentURLIdx = 0
}

// RecordAttempt records the result of a fetch attempt.
func (um *URLManager) RecordAttempt(url string, success bool, err error, statusCode int, duration time.Duration) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	um.attemptLog[url] = append(um.attemptLog[url], AttemptResult{
		URL:        url,
		Attempt:    len(um.attemptLog[url]) + 1,
		Success:    success,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// HasMoreSources returns true if there are more sources to try.
func (um *URLManager) HasMoreSources() bool {
	return um.currentSourceIdx < len(um.sources)
}

// GetSourceCount returns the total number of sources.
func (um *URLManager) GetSourceCount() int {
	return len(um.sources)
}

// GetCurrentSource returns the current source.
func (um *URLManager) GetCurrentSource() config.SourceConfig {
	if um.currentSourceIdx < len(um.sources) {
		return um.sources[um.currentSourceIdx]
	}

	return config.SourceConfig{}
}

// GetAttemptLog returns the attempt log for a URL.
func (um *URLManager) GetAttemptLog(url string) []AttemptResult {
	return um.attemptLog[url]
}

// GetAttemptStats returns statistics about fetch attempts.
func (um *URLManager) GetAttemptStats() AttemptStats {
	stats := AttemptStats{
		TotalSources: len(um.sources),
		URLAttempts:  make(map[string]int),
	}

	for url, results := range um.attemptLog {
		stats.URLAttempts[url] = len(results)
		stats.TotalAttempts += len(results)

		urlSuccess := false

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				urlSuccess = true
			} else {
				stats.FailedAttempts++
			}
		}

		if urlSuccess {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	URLAttempts        map[string]int
	TotalSources       int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"Sources: %d | URLs: %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalSources,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}

// LogAttemptSummary logs a summary of fetch attempts using the provided logger.
func (um *URLManager) LogAttemptSummary(l *logger.Logger) {
	for _, source := range um.sources {
		locations := source.GetAllURLs()
		if source.IsLocalFile() {
			locations = []string{source.File}
		}

		for _, loc := range locations {
			results := um.attemptLog[loc]
			if len(results) == 0 {
				l.Debug("source location not attempted", "source", source.Name, "location", loc)

				continue
			}

			last := results[len(results)-1]
			l.Info("source location attempts",
				"source", source.Name,
				"location", loc,
				"attempts", len(results),
				"success", last.Success,
				"last_error", last.Error,
			)
		}
	}

	l.Info("fetch attempt summary", "stats", um.GetAttemptStats().String())
}

// Reset resets the URL manager state.
func (um *URLManager) Reset() {
	um.currentSourceIdx = 0
	um.currentURLIdx = 0
	um.attemptLog = make(map[string][]AttemptResult)
}
