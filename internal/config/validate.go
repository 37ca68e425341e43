package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be > 0")
	}
	if cfg.Browser.RenderWait < 0 {
		return fmt.Errorf("browser.render_wait must be >= 0")
	}
	if cfg.Browser.StableWindow <= 0 {
		return fmt.Errorf("browser.stable_window must be > 0")
	}

	if cfg.Reveal.ControlTimeout <= 0 {
		return fmt.Errorf("reveal.control_timeout must be > 0")
	}
	pauses := []struct {
		name     string
		min, max int64
	}{
		{"scroll_pause", int64(cfg.Reveal.ScrollPauseMin), int64(cfg.Reveal.ScrollPauseMax)},
		{"click_pause", int64(cfg.Reveal.ClickPauseMin), int64(cfg.Reveal.ClickPauseMax)},
		{"render_pause", int64(cfg.Reveal.RenderPauseMin), int64(cfg.Reveal.RenderPauseMax)},
	}
	for _, p := range pauses {
		if p.min < 0 {
			return fmt.Errorf("reveal.%s_min must be >= 0", p.name)
		}
		if p.max < p.min {
			return fmt.Errorf("reveal.%s_max must be >= reveal.%s_min", p.name, p.name)
		}
	}
	if cfg.Reveal.MaxClicks < 0 {
		return fmt.Errorf("reveal.max_clicks must be >= 0, got %d", cfg.Reveal.MaxClicks)
	}

	if cfg.Site.ItemSelector == "" {
		return fmt.Errorf("site.item_selector must not be empty")
	}
	if cfg.Site.ControlXPath == "" {
		return fmt.Errorf("site.control_xpath must not be empty")
	}

	if cfg.Policy.RefreshFromRobots && cfg.Policy.RobotsTimeout <= 0 {
		return fmt.Errorf("policy.robots_timeout must be > 0 when refresh_from_robots is set")
	}

	if cfg.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir must not be empty")
	}
	if cfg.Storage.BaseName == "" {
		return fmt.Errorf("storage.base_name must not be empty")
	}
	if cfg.Storage.MongoURI != "" {
		if cfg.Storage.MongoDatabase == "" || cfg.Storage.MongoCollection == "" {
			return fmt.Errorf("storage.mongo_database and storage.mongo_collection are required with mongo_uri")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is a usable scrape entry point.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
