package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for gridcrawl.
type Config struct {
	Browser Browser `mapstructure:"browser" yaml:"browser"`
	Reveal  Reveal  `mapstructure:"reveal"  yaml:"reveal"`
	Site    Site    `mapstructure:"site"    yaml:"site"`
	Policy  Policy  `mapstructure:"policy"  yaml:"policy"`
	Storage Storage `mapstructure:"storage" yaml:"storage"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

// Browser controls the headless browser session.
type Browser struct {
	Headless          bool          `mapstructure:"headless"           yaml:"headless"`
	NoSandbox         bool          `mapstructure:"no_sandbox"         yaml:"no_sandbox"`
	UserAgent         string        `mapstructure:"user_agent"         yaml:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	RenderWait        time.Duration `mapstructure:"render_wait"        yaml:"render_wait"`
	StableWindow      time.Duration `mapstructure:"stable_window"      yaml:"stable_window"`
}

// Reveal controls the load-more loop: the control wait timeout and the
// randomized politeness pauses between interactions.
type Reveal struct {
	ControlTimeout time.Duration `mapstructure:"control_timeout"  yaml:"control_timeout"`
	ScrollPauseMin time.Duration `mapstructure:"scroll_pause_min" yaml:"scroll_pause_min"`
	ScrollPauseMax time.Duration `mapstructure:"scroll_pause_max" yaml:"scroll_pause_max"`
	ClickPauseMin  time.Duration `mapstructure:"click_pause_min"  yaml:"click_pause_min"`
	ClickPauseMax  time.Duration `mapstructure:"click_pause_max"  yaml:"click_pause_max"`
	RenderPauseMin time.Duration `mapstructure:"render_pause_min" yaml:"render_pause_min"`
	RenderPauseMax time.Duration `mapstructure:"render_pause_max" yaml:"render_pause_max"`
	MaxClicks      int           `mapstructure:"max_clicks"       yaml:"max_clicks"`
}

// Site holds the two load-bearing live-DOM locators of the page template.
// Both are fragile by nature, so they stay configurable.
type Site struct {
	ItemSelector string `mapstructure:"item_selector" yaml:"item_selector"`
	ControlXPath string `mapstructure:"control_xpath" yaml:"control_xpath"`
}

// Policy controls URL path filtering.
type Policy struct {
	DisallowedPrefixes []string      `mapstructure:"disallowed_prefixes" yaml:"disallowed_prefixes"`
	RefreshFromRobots  bool          `mapstructure:"refresh_from_robots" yaml:"refresh_from_robots"`
	RobotsTimeout      time.Duration `mapstructure:"robots_timeout"      yaml:"robots_timeout"`
}

// Storage controls output sinks.
type Storage struct {
	OutputDir       string `mapstructure:"output_dir"       yaml:"output_dir"`
	BaseName        string `mapstructure:"base_name"        yaml:"base_name"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// Logging controls logging behavior.
type Logging struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults matching the
// source site template.
func DefaultConfig() *Config {
	return &Config{
		Browser: Browser{
			Headless:          true,
			NoSandbox:         true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			NavigationTimeout: 30 * time.Second,
			RenderWait:        10 * time.Second,
			StableWindow:      300 * time.Millisecond,
		},
		Reveal: Reveal{
			ControlTimeout: 10 * time.Second,
			ScrollPauseMin: 2 * time.Second,
			ScrollPauseMax: 4 * time.Second,
			ClickPauseMin:  1 * time.Second,
			ClickPauseMax:  2 * time.Second,
			RenderPauseMin: 2 * time.Second,
			RenderPauseMax: 4 * time.Second,
			MaxClicks:      0,
		},
		Site: Site{
			ItemSelector: "article.fr-grid-item.w4",
			ControlXPath: "//a[@href='#' and @target='_self'][.//div[contains(@class, 'fr-load-more')]]",
		},
		Policy: Policy{
			DisallowedPrefixes: nil, // nil = policy package defaults
			RefreshFromRobots:  false,
			RobotsTimeout:      10 * time.Second,
		},
		Storage: Storage{
			OutputDir:       "./output",
			BaseName:        "products",
			MongoDatabase:   "gridcrawl",
			MongoCollection: "products",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}
