package cli

import (
	"log/slog"
	"os"

	"github.com/me/concdemo/internal/config"
	"github.com/me/concdemo/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking CONCDEMO_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("CONCDEMO_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the concdemo CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "concdemo",
		Short: "concdemo: image gallery fetched through a dependency-aware work queue",
		Long: `concdemo fetches four images and shows them in a gallery, using one of
four scheduling modes: concurrent, serial, blocks, or operations.

Run a batch locally with "concdemo run", or start the control server with
"concdemo serve" and drive it with start, status, cancel, slider and gallery.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "concdemo server URL (or CONCDEMO_SERVER env)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (images, limits, server settings)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newModesCmd(),
		newStartCmd(),
		newStatusCmd(),
		newCancelCmd(),
		newSliderCmd(),
		newGalleryCmd(),
	)

	return root
}

// loadConfig returns the --config file merged over the defaults and
// rebuilds the logger from the file's log settings.
func loadConfig(cmd *cobra.Command) (config.DemoConfig, error) {
	cfg := config.DefaultDemoConfig()
	if flagConfig != "" {
		var err error
		if cfg, err = config.LoadDemoConfig(flagConfig); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	level, format := logSettings(cfg.Server, flags.Changed("log-level") || flagDebug, flags.Changed("log-format"))
	logger = logging.NewLogger(level, format)
	return cfg, nil
}

// logSettings picks the log level and format. Command-line flags win over
// the config file.
func logSettings(cfg config.ServerConfig, levelSet, formatSet bool) (slog.Level, string) {
	level, format := flagLogLevel, flagLogFormat
	if !levelSet && cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	if !formatSet && cfg.LogFormat != "" {
		format = cfg.LogFormat
	}
	return logging.ParseLevel(level), format
}
