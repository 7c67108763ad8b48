package config

// Config represents the complete configuration structure
type Config struct {
	Library     LibraryConfig     `mapstructure:"library"`
	Journal     JournalConfig     `mapstructure:"journal"`
	Templates   TemplatesConfig   `mapstructure:"templates"`
	TMDB        TMDBConfig        `mapstructure:"tmdb"`
	TVDB        TVDBConfig        `mapstructure:"tvdb"`
	TVMaze      TVMazeConfig      `mapstructure:"tvmaze"`
	AniDB       AniDBConfig       `mapstructure:"anidb"`
	MusicBrainz MusicBrainzConfig `mapstructure:"musicbrainz"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Filters     FilterConfig      `mapstructure:"filters"`
	Safety      SafetyConfig      `mapstructure:"safety"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// LibraryConfig describes the media library to scan
type LibraryConfig struct {
	Root       string   `mapstructure:"root"`
	Extensions []string `mapstructure:"extensions"`
	Ignore     []string `mapstructure:"ignore"`
}

// JournalConfig locates the rename journal database
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// TemplatesConfig locates optional per-media-type naming template overrides
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

// TMDBConfig holds TMDB API connection details
type TMDBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"api_key"`
	Language string `mapstructure:"language"`
}

// TVDBConfig holds TVDB API connection details
type TVDBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	PIN     string `mapstructure:"pin"`
}

// TVMazeConfig holds TVMaze settings. The API needs no key, so enabling it
// is the only knob.
type TVMazeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AniDBConfig holds AniDB client attribution details
type AniDBConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ClientName    string `mapstructure:"client_name"`
	ClientVersion int    `mapstructure:"client_version"`
}

// MusicBrainzConfig holds MusicBrainz application attribution details
type MusicBrainzConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	Contact    string `mapstructure:"contact"`
}

// LLMConfig holds the OpenAI-compatible endpoint used for filename parsing
// assistance. A local Ollama works through base_url.
type LLMConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
}

// FilterConfig maps preset names to filter expressions
type FilterConfig map[string]string

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun        bool `mapstructure:"dry_run"`
	ConfirmApply  bool `mapstructure:"confirm_apply"`
	SkipHardlinks bool `mapstructure:"skip_hardlinks"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
