package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/organarr/organarr/anidb"
	"github.com/organarr/organarr/config"
	"github.com/organarr/organarr/filter"
	"github.com/organarr/organarr/journal"
	"github.com/organarr/organarr/llm"
	"github.com/organarr/organarr/metadata"
	"github.com/organarr/organarr/musicbrainz"
	"github.com/organarr/organarr/namer"
	"github.com/organarr/organarr/organize"
	"github.com/organarr/organarr/scanner"
	"github.com/organarr/organarr/tmdb"
	"github.com/organarr/organarr/tvdb"
	"github.com/organarr/organarr/tvmaze"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	sc      *scanner.Scanner
	parser  *namer.Parser
	engine  *namer.Engine
	meta    *metadata.Manager
	filters *filter.Manager
	planner *organize.Planner

	tmdbClient        *tmdb.Client
	tvdbClient        *tvdb.Client
	tvmazeClient      *tvmaze.Client
	anidbClient       *anidb.Client
	musicbrainzClient *musicbrainz.Client
	llmClient         *llm.Client

	// Command flags
	filterExpr string
	preset     string
	dryRun     bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "organarr",
	Short: "Organize media libraries with safe, reversible renames",
	Long: `organarr scans a media library, works out what every file is, and
renames it to a canonical layout. Parses are confirmed against metadata
catalogs (TMDB, TVDB, TVMaze, AniDB, MusicBrainz) when configured, every
rename is journaled so it can be rolled back, and filter expressions
select exactly which files an operation touches.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// SetVersion records the build metadata stamped in by main.
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "preview changes without renaming anything")
}

// initializeApp loads the configuration and wires up the pipeline: the
// library scanner, the filename parser, the naming engine, the metadata
// sources and the filter presets. The journal is opened later, only by
// commands that write.
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override dry-run from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}

	sc, err = scanner.New(cfg.Library.Root,
		scanner.WithExtensions(cfg.Library.Extensions),
		scanner.WithIgnorePatterns(cfg.Library.Ignore),
		scanner.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	engine, err = namer.NewEngine(cfg.Templates.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to load naming templates: %w", err)
	}

	if err := setupMetadata(); err != nil {
		return err
	}

	parserOpts := []namer.ParserOption{namer.WithLogger(logger)}
	if llmClient != nil {
		parserOpts = append(parserOpts, namer.WithVerifier(llm.NewVerifier(llmClient)))
	}
	parser = namer.NewParser(parserOpts...)

	planner = organize.NewPlanner(sc, parser, engine, logger)
	if len(meta.Sources()) > 0 {
		planner.SetMetadataManager(meta)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// setupMetadata creates a client per enabled vendor and registers it as a
// metadata source. A vendor that fails to construct is logged and skipped;
// one bad section never blocks the rest.
func setupMetadata() error {
	meta = metadata.NewManager(logger)

	if cfg.TMDB.Enabled {
		client, err := tmdb.NewClient(cfg.TMDB.APIKey,
			tmdb.WithLanguage(cfg.TMDB.Language),
			tmdb.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create TMDB client, continuing without it")
		} else {
			tmdbClient = client
			meta.Register(metadata.NewTMDBSearcher(client))
		}
	}

	if cfg.TVDB.Enabled {
		opts := []tvdb.Option{tvdb.WithLogger(logger)}
		if cfg.TVDB.PIN != "" {
			opts = append(opts, tvdb.WithPIN(cfg.TVDB.PIN))
		}
		client, err := tvdb.NewClient(cfg.TVDB.APIKey, opts...)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create TVDB client, continuing without it")
		} else {
			tvdbClient = client
			meta.Register(metadata.NewTVDBSearcher(client))
		}
	}

	if cfg.TVMaze.Enabled {
		client, err := tvmaze.NewClient(tvmaze.WithLogger(logger))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create TVMaze client, continuing without it")
		} else {
			tvmazeClient = client
			meta.Register(metadata.NewTVMazeSearcher(client))
		}
	}

	if cfg.AniDB.Enabled {
		client, err := anidb.NewClient(cfg.AniDB.ClientName, cfg.AniDB.ClientVersion,
			anidb.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create AniDB client, continuing without it")
		} else {
			anidbClient = client
			meta.Register(metadata.NewAniDBSearcher(client))
		}
	}

	if cfg.MusicBrainz.Enabled {
		opts := []musicbrainz.Option{musicbrainz.WithLogger(logger)}
		if cfg.MusicBrainz.Contact != "" {
			opts = append(opts, musicbrainz.WithContact(cfg.MusicBrainz.Contact))
		}
		client, err := musicbrainz.NewClient(cfg.MusicBrainz.AppName, cfg.MusicBrainz.AppVersion, opts...)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create MusicBrainz client, continuing without it")
		} else {
			musicbrainzClient = client
			meta.Register(metadata.NewMusicBrainzSearcher(client))
		}
	}

	if cfg.LLM.Enabled {
		opts := []llm.Option{llm.WithLogger(logger)}
		if cfg.LLM.APIKey != "" {
			opts = append(opts, llm.WithAPIKey(cfg.LLM.APIKey))
		}
		client, err := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, opts...)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create LLM client, continuing without it")
		} else {
			llmClient = client
			meta.Register(metadata.NewLLMSearcher(client))
		}
	}

	if sources := meta.Sources(); len(sources) > 0 {
		logger.Info().Strs("sources", sources).Msg("Metadata sources enabled")
	} else {
		logger.Debug().Msg("No metadata sources enabled, renames use parsed names only")
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Color only helps a real terminal.
	useColor := cfg.Color &&
		(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !useColor,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// getFilterExpression determines the filter expression to use.
// Priority: command line filter > preset. Neither given means the
// whole library is in scope.
func getFilterExpression() (string, error) {
	if filterExpr != "" {
		return filterExpr, nil
	}

	if preset != "" {
		if expression, ok := cfg.Filters[preset]; ok {
			return expression, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", preset)
	}

	return "", nil
}

// applyFilter compiles the selected filter expression, if any, and
// installs it on the planner.
func applyFilter() error {
	expression, err := getFilterExpression()
	if err != nil {
		return err
	}
	if expression == "" {
		return nil
	}

	compiled, err := filters.Compile(expression)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}
	planner.SetFilter(compiled.Evaluate)

	logger.Debug().Str("filter", expression).Msg("Filter installed")
	return nil
}

// openJournal opens the rename journal at the configured path. Commands
// that never write (scan, preview, lookup, test) do not call this, so a
// read-only run never creates the database file.
func openJournal() (*journal.Store, error) {
	store, err := journal.Open(cfg.Journal.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}
