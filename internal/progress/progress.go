// Package progress carries structured scrape progress events so the core
// never commits to a specific output medium.
package progress

import (
	"log/slog"
)

// Stage identifies which part of the scrape emitted an event.
type Stage string

const (
	StageNavigate Stage = "navigate"
	StageReveal   Stage = "reveal"
	StageExtract  Stage = "extract"
	StageDone     Stage = "done"
)

// Event is one progress observation. Zero-valued fields are not
// meaningful for every stage: Clicks is reveal-only, Index/Total are
// extract-only.
type Event struct {
	Stage      Stage
	URL        string
	Clicks     int
	Index      int
	Total      int
	PolicySkip bool
	Err        error
}

// Reporter consumes progress events. Implementations must be cheap;
// reporting happens inline on the scrape's single thread.
type Reporter interface {
	Report(ev Event)
}

// NopReporter drops all events.
type NopReporter struct{}

func (NopReporter) Report(Event) {}

// LogReporter forwards events to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a Reporter backed by slog.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With("component", "progress")}
}

func (r *LogReporter) Report(ev Event) {
	switch ev.Stage {
	case StageNavigate:
		r.logger.Info("navigated", "url", ev.URL)
	case StageReveal:
		r.logger.Info("clicked load more", "clicks", ev.Clicks)
	case StageExtract:
		switch {
		case ev.PolicySkip:
			r.logger.Info("skipping disallowed URL", "index", ev.Index, "url", ev.URL)
		case ev.Err != nil:
			r.logger.Warn("item skipped", "index", ev.Index, "error", ev.Err)
		default:
			r.logger.Debug("processed item", "index", ev.Index+1, "total", ev.Total)
		}
	case StageDone:
		r.logger.Info("scrape finished", "url", ev.URL, "items", ev.Total, "clicks", ev.Clicks)
	}
}

// MultiReporter fans events out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(ev Event) {
	for _, r := range m {
		r.Report(ev)
	}
}
