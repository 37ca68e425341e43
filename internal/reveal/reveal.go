// Package reveal drives the "load more" interaction loop that
// incrementally renders a paginated category page.
package reveal

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gridcrawl/gridcrawl/internal/config"
	"github.com/gridcrawl/gridcrawl/internal/progress"
	"github.com/gridcrawl/gridcrawl/internal/types"
)

// ContentRevealer is the live-page surface the controller drives. The rod
// adapter implements it against a real page; tests use fakes so the
// fragile load-more selector never leaks into the state machine.
type ContentRevealer interface {
	// ScrollToBottom scrolls the viewport to the bottom of the current
	// content.
	ScrollToBottom(ctx context.Context) error

	// ContentHeight returns the current document scroll height.
	ContentHeight(ctx context.Context) (int, error)

	// FindControl waits up to timeout for the load-more control to be
	// present. A timeout surfaces as types.ErrControlNotFound.
	FindControl(ctx context.Context, timeout time.Duration) (Control, error)
}

// Control is one located load-more affordance. Any method may fail with
// types.ErrStaleControl if the page re-rendered underneath it.
type Control interface {
	Visible() (bool, error)
	ScrollIntoView() error
	Click() error
}

// state is one phase of the reveal loop.
type state int

const (
	stateScrolling state = iota
	stateAwaitingControl
	stateClicking
	stateDone
)

// revealState is the loop's ephemeral bookkeeping, created per Run call.
type revealState struct {
	clicksPerformed int
	terminal        bool
}

// Controller repeatedly triggers the load-more affordance until no more
// content is available, pacing every interaction so the remote server is
// not overwhelmed. Absence of the control is the expected completion
// signal, not an error.
type Controller struct {
	cfg      config.Reveal
	logger   *slog.Logger
	reporter progress.Reporter
	rng      *rand.Rand
}

// New creates a Controller. A nil reporter drops progress events.
func New(cfg config.Reveal, logger *slog.Logger, reporter progress.Reporter) *Controller {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Controller{
		cfg:      cfg,
		logger:   logger.With("component", "reveal"),
		reporter: reporter,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes the reveal loop against page until the control disappears,
// turns invisible, times out, or fails. It returns the number of clicks
// performed and, when the loop ended on anything other than normal
// exhaustion, a *types.RevealError the caller should treat as a warning.
func (c *Controller) Run(ctx context.Context, page ContentRevealer) (int, error) {
	st := revealState{}
	current := stateScrolling

	var control Control
	var termErr error

	for !st.terminal {
		if err := ctx.Err(); err != nil {
			return st.clicksPerformed, &types.RevealError{Clicks: st.clicksPerformed, Err: err, Transient: true}
		}

		switch current {
		case stateScrolling:
			if err := page.ScrollToBottom(ctx); err != nil {
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err}
				current = stateDone
				continue
			}
			if err := c.pause(ctx, c.cfg.ScrollPauseMin, c.cfg.ScrollPauseMax); err != nil {
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err, Transient: true}
				current = stateDone
				continue
			}
			if h, err := page.ContentHeight(ctx); err == nil {
				c.logger.Debug("current page height", "height", h)
			}
			current = stateAwaitingControl

		case stateAwaitingControl:
			ctl, err := page.FindControl(ctx, c.cfg.ControlTimeout)
			switch {
			case err == nil:
				control = ctl
				current = stateClicking
			case errors.Is(err, types.ErrControlNotFound) || errors.Is(err, context.DeadlineExceeded):
				// No more content or control unreachable: normal completion.
				c.logger.Info("load-more control not found, content fully revealed",
					"clicks", st.clicksPerformed)
				current = stateDone
			case errors.Is(err, types.ErrStaleControl):
				current = c.retryAfterStale(ctx, &st)
			default:
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err}
				current = stateDone
			}

		case stateClicking:
			visible, err := control.Visible()
			if err != nil {
				if errors.Is(err, types.ErrStaleControl) {
					current = c.retryAfterStale(ctx, &st)
					continue
				}
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err}
				current = stateDone
				continue
			}
			if !visible {
				// Content exhausted: the control stays in the DOM but is hidden.
				c.logger.Info("load-more control not visible, content fully revealed",
					"clicks", st.clicksPerformed)
				current = stateDone
				continue
			}

			if err := control.ScrollIntoView(); err != nil {
				if errors.Is(err, types.ErrStaleControl) {
					current = c.retryAfterStale(ctx, &st)
					continue
				}
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err}
				current = stateDone
				continue
			}
			if err := c.pause(ctx, c.cfg.ClickPauseMin, c.cfg.ClickPauseMax); err != nil {
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err, Transient: true}
				current = stateDone
				continue
			}

			if err := control.Click(); err != nil {
				if errors.Is(err, types.ErrStaleControl) {
					current = c.retryAfterStale(ctx, &st)
					continue
				}
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err}
				current = stateDone
				continue
			}

			st.clicksPerformed++
			c.reporter.Report(progress.Event{Stage: progress.StageReveal, Clicks: st.clicksPerformed})
			c.logger.Debug("clicked load more", "clicks", st.clicksPerformed)

			if c.cfg.MaxClicks > 0 && st.clicksPerformed >= c.cfg.MaxClicks {
				c.logger.Info("click cap reached", "clicks", st.clicksPerformed)
				current = stateDone
				continue
			}

			// Let the newly requested items render before the next pass.
			if err := c.pause(ctx, c.cfg.RenderPauseMin, c.cfg.RenderPauseMax); err != nil {
				termErr = &types.RevealError{Clicks: st.clicksPerformed, Err: err, Transient: true}
				current = stateDone
				continue
			}
			current = stateScrolling

		case stateDone:
			st.terminal = true
		}
	}

	c.logger.Info("finished loading more products", "clicks", st.clicksPerformed)
	return st.clicksPerformed, termErr
}

// retryAfterStale handles a control reference invalidated by a re-render:
// pause briefly and re-locate rather than aborting.
func (c *Controller) retryAfterStale(ctx context.Context, st *revealState) state {
	c.logger.Debug("page structure changed, retrying", "clicks", st.clicksPerformed)
	if err := c.pause(ctx, c.cfg.ClickPauseMin, c.cfg.ClickPauseMax); err != nil {
		return stateDone
	}
	return stateAwaitingControl
}

// pause blocks for a duration drawn uniformly from [min, max], honoring
// context cancellation.
func (c *Controller) pause(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(c.rng.Int63n(int64(max - min)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
