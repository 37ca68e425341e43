package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("GRIDCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("gridcrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".gridcrawl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.no_sandbox", cfg.Browser.NoSandbox)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.navigation_timeout", cfg.Browser.NavigationTimeout)
	v.SetDefault("browser.render_wait", cfg.Browser.RenderWait)
	v.SetDefault("browser.stable_window", cfg.Browser.StableWindow)

	v.SetDefault("reveal.control_timeout", cfg.Reveal.ControlTimeout)
	v.SetDefault("reveal.scroll_pause_min", cfg.Reveal.ScrollPauseMin)
	v.SetDefault("reveal.scroll_pause_max", cfg.Reveal.ScrollPauseMax)
	v.SetDefault("reveal.click_pause_min", cfg.Reveal.ClickPauseMin)
	v.SetDefault("reveal.click_pause_max", cfg.Reveal.ClickPauseMax)
	v.SetDefault("reveal.render_pause_min", cfg.Reveal.RenderPauseMin)
	v.SetDefault("reveal.render_pause_max", cfg.Reveal.RenderPauseMax)
	v.SetDefault("reveal.max_clicks", cfg.Reveal.MaxClicks)

	v.SetDefault("site.item_selector", cfg.Site.ItemSelector)
	v.SetDefault("site.control_xpath", cfg.Site.ControlXPath)

	v.SetDefault("policy.disallowed_prefixes", cfg.Policy.DisallowedPrefixes)
	v.SetDefault("policy.refresh_from_robots", cfg.Policy.RefreshFromRobots)
	v.SetDefault("policy.robots_timeout", cfg.Policy.RobotsTimeout)

	v.SetDefault("storage.output_dir", cfg.Storage.OutputDir)
	v.SetDefault("storage.base_name", cfg.Storage.BaseName)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
