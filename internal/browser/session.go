// Package browser owns the headless Chromium session via Rod and adapts
// the live page to the narrow surfaces the scrape core consumes.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/gridcrawl/gridcrawl/internal/config"
	"github.com/gridcrawl/gridcrawl/internal/reveal"
	"github.com/gridcrawl/gridcrawl/internal/types"
)

// Factory launches one Chromium instance and hands out stealth pages.
type Factory struct {
	browser *rod.Browser
	cfg     *config.Config
	logger  *slog.Logger
}

// NewFactory launches the browser. Launch or connect failure is fatal.
func NewFactory(cfg *config.Config, logger *slog.Logger) (*Factory, error) {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("start-maximized")
	if cfg.Browser.NoSandbox {
		l = l.Set("no-sandbox").Set("disable-setuid-sandbox")
	}

	launchURL, err := l.Launch()
	if err != nil {
		return nil, &types.SessionError{Stage: "launch", Err: err}
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, &types.SessionError{Stage: "connect", Err: err}
	}

	logger.Info("browser ready", "headless", cfg.Browser.Headless)

	return &Factory{
		browser: browser,
		cfg:     cfg,
		logger:  logger.With("component", "browser"),
	}, nil
}

// NewSession opens a stealth page with the configured user agent. The
// stealth patches cover what the site's markup probes for: the webdriver
// flag, plugin list, and chrome runtime objects.
func (f *Factory) NewSession(ctx context.Context) (*Session, error) {
	page, err := stealth.Page(f.browser)
	if err != nil {
		return nil, &types.SessionError{Stage: "create page", Err: err}
	}

	if ua := f.cfg.Browser.UserAgent; ua != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
		if err != nil {
			f.logger.Warn("failed to set user agent", "error", err)
		}
	}

	return &Session{
		page:         page,
		cfg:          f.cfg,
		controlXPath: f.cfg.Site.ControlXPath,
		logger:       f.logger,
	}, nil
}

// Close shuts down the browser and every page it owns.
func (f *Factory) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}

// Session wraps one Rod page for a single scrape.
type Session struct {
	page         *rod.Page
	cfg          *config.Config
	controlXPath string
	logger       *slog.Logger
}

// Navigate loads the URL and waits for the load event. Navigation failure
// is fatal; a slow load event is only a warning.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.NavigationTimeout)
	defer cancel()

	if err := s.page.Context(navCtx).Navigate(url); err != nil {
		return &types.SessionError{Stage: "navigate", URL: url, Err: err}
	}
	if err := s.page.Context(navCtx).WaitLoad(); err != nil {
		s.logger.Warn("wait load timeout, continuing", "url", url, "error", err)
	}
	return nil
}

// WaitRender gives the page's lazy scripts time to paint the initial
// grid before the reveal loop starts.
func (s *Session) WaitRender(ctx context.Context) error {
	if err := s.page.Context(ctx).Timeout(s.cfg.Browser.RenderWait).WaitStable(s.cfg.Browser.StableWindow); err != nil {
		s.logger.Warn("page stability timeout, continuing", "error", err)
	}
	if h, err := s.ContentHeight(ctx); err == nil {
		s.logger.Debug("initial page height", "height", h)
	}
	return ctx.Err()
}

// ScrollToBottom implements reveal.ContentRevealer.
func (s *Session) ScrollToBottom(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(`window.scrollTo(0, document.body.scrollHeight)`)
	return mapStale(err)
}

// ContentHeight implements reveal.ContentRevealer.
func (s *Session) ContentHeight(ctx context.Context) (int, error) {
	result, err := s.page.Context(ctx).Eval(`document.body.scrollHeight`)
	if err != nil {
		return 0, mapStale(err)
	}
	return result.Value.Int(), nil
}

// FindControl implements reveal.ContentRevealer: wait up to timeout for
// the load-more anchor. The control's DOM location is unreliable, which
// is why only this adapter knows its XPath.
func (s *Session) FindControl(ctx context.Context, timeout time.Duration) (reveal.Control, error) {
	el, err := s.page.Context(ctx).Timeout(timeout).ElementX(s.controlXPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w within %s", types.ErrControlNotFound, timeout)
		}
		return nil, mapStale(err)
	}
	return &control{el: el.CancelTimeout()}, nil
}

// Cards returns the outer HTML of every item card currently rendered, in
// document order. Extraction runs over these static fragments so element
// handles never outlive the live DOM they reference.
func (s *Session) Cards(ctx context.Context, selector string) ([]string, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("enumerate item cards %q: %w", selector, err)
	}

	cards := make([]string, 0, len(els))
	for i, el := range els {
		html, err := el.HTML()
		if err != nil {
			// A card replaced mid-enumeration is skipped like any other
			// failing item.
			s.logger.Warn("item card snapshot failed", "index", i, "error", mapStale(err))
			continue
		}
		cards = append(cards, html)
	}
	return cards, nil
}

// Close releases the page. Safe to call after a failed navigation.
func (s *Session) Close() error {
	if s.page != nil {
		return s.page.Close()
	}
	return nil
}
