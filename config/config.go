package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "organarr"))
		}

		// Check /etc
		v.AddConfigPath("/etc/organarr/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Library defaults
	v.SetDefault("library.extensions", []string{".mp4", ".mkv", ".avi", ".mov", ".m4v"})
	v.SetDefault("library.ignore", []string{"(?i)sample", "(?i)trailer", "(?i)extra"})

	// Journal defaults
	v.SetDefault("journal.path", defaultJournalPath())

	// Metadata source defaults. TVMaze needs no key, so it is the only
	// source enabled out of the box.
	v.SetDefault("tvmaze.enabled", true)
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("anidb.client_version", 1)
	v.SetDefault("musicbrainz.app_name", "organarr")
	v.SetDefault("musicbrainz.app_version", "dev")
	v.SetDefault("llm.base_url", "http://localhost:11434/v1")

	// Safety defaults
	v.SetDefault("safety.dry_run", true)
	v.SetDefault("safety.confirm_apply", true)
	v.SetDefault("safety.skip_hardlinks", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// defaultJournalPath places the rename journal under the user's organarr
// directory, falling back to the working directory when home is unknown.
func defaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "organarr.db"
	}
	return filepath.Join(home, ".config", "organarr", "journal.db")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Library.Root == "" {
		return fmt.Errorf("library.root is required")
	}

	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path is required")
	}

	if cfg.TMDB.Enabled && cfg.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key must be set when tmdb is enabled")
	}

	if cfg.TVDB.Enabled && cfg.TVDB.APIKey == "" {
		return fmt.Errorf("tvdb.api_key must be set when tvdb is enabled")
	}

	if cfg.AniDB.Enabled {
		if cfg.AniDB.ClientName == "" {
			return fmt.Errorf("anidb.client_name must be set when anidb is enabled")
		}
		if cfg.AniDB.ClientVersion < 1 {
			return fmt.Errorf("anidb.client_version must be at least 1")
		}
	}

	if cfg.MusicBrainz.Enabled {
		if cfg.MusicBrainz.AppName == "" {
			return fmt.Errorf("musicbrainz.app_name must be set when musicbrainz is enabled")
		}
		if cfg.MusicBrainz.AppVersion == "" {
			return fmt.Errorf("musicbrainz.app_version must be set when musicbrainz is enabled")
		}
	}

	if cfg.LLM.Enabled {
		if cfg.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url must be set when llm is enabled")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model must be set when llm is enabled")
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
