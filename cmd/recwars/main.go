// recwars runs RecWars sessions in the terminal.
//
// Usage:
//
//	recwars play [name value ...]  - Load a map and run the frame loop
//	recwars serve                  - Serve assets and record telemetry (and optional SSH play)
//	recwars maps                   - List the curated maps
//	recwars cvars [name]           - Show cvars and their values
//	recwars pings                  - Show telemetry received by the directory
//
// Global flags:
//
//	--assets <url|dir>   - Where the manifest and maps are fetched from
//	--cvars-file <path>  - Cvars YAML layered over the balance profile
//	--log <path>         - Log file (play logs nowhere by default)
//	--log-level <level>  - debug, info, warn or error
//	--db <path>          - Directory database (default: ~/.recwars/directory.db)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/recwars/internal/config"

	// Import engines to register them
	_ "github.com/vovakirdan/recwars/internal/engine/preview"
)

// version is set at build time.
var version = "dev"

var (
	// Global flags
	flagAssets    string
	flagCvarsFile string
	flagLogPath   string
	flagLogLevel  string
	flagDBPath    string
	flagTelemetry string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recwars",
	Short: "RecWars - tank arena host for the terminal",
	Long: `RecWars loads a map and its texture manifest, then runs the frame loop
that feeds keyboard input and runtime settings to the game engine.

Available commands:
  play     - Load a map and play
  serve    - Serve assets, record telemetry, optionally host play over SSH
  maps     - List the curated maps
  cvars    - Show runtime settings
  pings    - Show telemetry received by the directory

Settings can also come from the environment: RECWARS_ASSETS,
RECWARS_TELEMETRY_URL, RECWARS_CVARS, RECWARS_LOG, RECWARS_LOG_LEVEL and
RECWARS_DB. Flags win over the environment.

Examples:
  recwars play
  recwars play --map Snow --balance recwar d_speed 2
  recwars play --query 'map=Atrium&g_armor=150&hud_names=false'
  recwars serve --assets-dir ./assets --ssh :23234
  recwars cvars g_railgun_speed`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagAssets, "assets", "", "Asset location: http(s) URL or directory")
	rootCmd.PersistentFlags().StringVar(&flagCvarsFile, "cvars-file", "", "Path to a cvars YAML file")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the directory database")
	rootCmd.PersistentFlags().StringVar(&flagTelemetry, "telemetry", "", "Telemetry ping URL (empty disables)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(cvarsCmd)
	rootCmd.AddCommand(pingsCmd)
}

// applyEnv fills every global flag the user did not set from the environment.
func applyEnv(cmd *cobra.Command, _ []string) error {
	e, err := config.ParseEnv()
	if err != nil {
		return err
	}
	fill := func(name string, dst *string, val string) {
		if !cmd.Flags().Changed(name) {
			*dst = val
		}
	}
	fill("assets", &flagAssets, e.Assets)
	fill("cvars-file", &flagCvarsFile, e.CvarsFile)
	fill("log", &flagLogPath, e.LogPath)
	fill("log-level", &flagLogLevel, e.LogLevel)
	fill("db", &flagDBPath, e.DBPath)
	fill("telemetry", &flagTelemetry, e.TelemetryURL)
	return nil
}

// newLogger writes to the --log file when set and to fallback otherwise.
// The returned close func is always safe to call.
func newLogger(fallback io.Writer, prefix string) (*log.Logger, func(), error) {
	w := fallback
	closeFn := func() {}
	if flagLogPath != "" {
		f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagLogLevel != "" {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			closeFn()
			return nil, func() {}, fmt.Errorf("bad log level: %w", err)
		}
		logger.SetLevel(level)
	}
	return logger, closeFn, nil
}
