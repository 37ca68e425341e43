package config

import (
	"testing"
	"time"
)

func TestValidateDefaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero control timeout", func(c *Config) { c.Reveal.ControlTimeout = 0 }},
		{"negative scroll pause", func(c *Config) { c.Reveal.ScrollPauseMin = -time.Second }},
		{"pause max below min", func(c *Config) {
			c.Reveal.ClickPauseMin = 2 * time.Second
			c.Reveal.ClickPauseMax = time.Second
		}},
		{"negative max clicks", func(c *Config) { c.Reveal.MaxClicks = -1 }},
		{"empty item selector", func(c *Config) { c.Site.ItemSelector = "" }},
		{"empty control xpath", func(c *Config) { c.Site.ControlXPath = "" }},
		{"mongo uri without database", func(c *Config) {
			c.Storage.MongoURI = "mongodb://localhost:27017"
			c.Storage.MongoDatabase = ""
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero navigation timeout", func(c *Config) { c.Browser.NavigationTimeout = 0 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://www.example.com/my/en/women/tops", false},
		{"http://example.com", false},
		{"ftp://example.com", true},
		{"not-a-url", true},
		{"https://", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reveal.ControlTimeout != 10*time.Second {
		t.Errorf("ControlTimeout = %s, want 10s", cfg.Reveal.ControlTimeout)
	}
	if cfg.Site.ItemSelector != "article.fr-grid-item.w4" {
		t.Errorf("ItemSelector = %q", cfg.Site.ItemSelector)
	}
}
