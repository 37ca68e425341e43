// Package scrape sequences the full run: entry policy check, navigation,
// incremental reveal, item enumeration, and per-item extraction.
package scrape

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gridcrawl/gridcrawl/internal/config"
	"github.com/gridcrawl/gridcrawl/internal/extract"
	"github.com/gridcrawl/gridcrawl/internal/policy"
	"github.com/gridcrawl/gridcrawl/internal/progress"
	"github.com/gridcrawl/gridcrawl/internal/reveal"
	"github.com/gridcrawl/gridcrawl/internal/types"
)

// Session is one open browser page. The rod-backed implementation lives
// in the browser package; tests use fakes.
type Session interface {
	reveal.ContentRevealer

	Navigate(ctx context.Context, url string) error
	WaitRender(ctx context.Context) error

	// Cards returns the outer HTML of each rendered item card, in
	// document order.
	Cards(ctx context.Context, selector string) ([]string, error)

	Close() error
}

// SessionFactory supplies configured browser sessions.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Orchestrator runs one scrape over one page at a time. It is
// best-effort: a partially revealed page still yields the records that
// did render, and only session-level failures propagate.
type Orchestrator struct {
	factory  SessionFactory
	policy   *policy.Policy
	reveal   *reveal.Controller
	cfg      *config.Config
	logger   *slog.Logger
	reporter progress.Reporter
}

// New creates an Orchestrator. A nil reporter drops progress events.
func New(factory SessionFactory, pol *policy.Policy, ctrl *reveal.Controller, cfg *config.Config, logger *slog.Logger, reporter progress.Reporter) *Orchestrator {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Orchestrator{
		factory:  factory,
		policy:   pol,
		reveal:   ctrl,
		cfg:      cfg,
		logger:   logger.With("component", "orchestrator"),
		reporter: reporter,
	}
}

// Run scrapes the category page at entryURL and returns the extracted
// records in render order. A disallowed entry URL yields an empty result
// without opening a page. The session is always released, success or
// failure.
func (o *Orchestrator) Run(ctx context.Context, entryURL string) ([]*types.ProductRecord, error) {
	if !o.policy.Allowed(entryURL) {
		o.logger.Warn("entry URL disallowed by path policy", "url", entryURL)
		o.reporter.Report(progress.Event{Stage: progress.StageDone, URL: entryURL, PolicySkip: true})
		return nil, nil
	}

	extractor, err := extract.New(entryURL, o.policy, o.logger)
	if err != nil {
		return nil, err
	}

	sess, err := o.factory.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, entryURL); err != nil {
		return nil, err
	}
	o.reporter.Report(progress.Event{Stage: progress.StageNavigate, URL: entryURL})

	if err := sess.WaitRender(ctx); err != nil {
		return nil, &types.SessionError{Stage: "render", URL: entryURL, Err: err}
	}

	clicks, err := o.reveal.Run(ctx, sess)
	if err != nil {
		// Partial reveal still yields partial but valid results.
		o.logger.Warn("reveal ended early, extracting what was revealed",
			"clicks", clicks, "error", err)
	}

	cards, err := sess.Cards(ctx, o.cfg.Site.ItemSelector)
	if err != nil {
		return nil, &types.SessionError{Stage: "enumerate", URL: entryURL, Err: err}
	}
	o.logger.Info("found products", "count", len(cards))

	records := make([]*types.ProductRecord, 0, len(cards))
	for i, cardHTML := range cards {
		rec, err := extractor.ExtractHTML(i, cardHTML)
		ev := progress.Event{Stage: progress.StageExtract, Index: i, Total: len(cards)}
		switch {
		case errors.Is(err, types.ErrPolicyDisallowed):
			ev.PolicySkip = true
			ev.URL = entryURL
		case err != nil:
			ev.Err = err
		default:
			records = append(records, rec)
		}
		o.reporter.Report(ev)
	}

	o.reporter.Report(progress.Event{
		Stage:  progress.StageDone,
		URL:    entryURL,
		Clicks: clicks,
		Total:  len(records),
	})

	return records, nil
}
