package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"sheet-i18n/internal/config"
	"sheet-i18n/internal/convert"
	"sheet-i18n/internal/output"
	"sheet-i18n/internal/watch"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet-i18n",
		Short: "Convert translation spreadsheets into per-locale JSON files",
		Long: `Scans the working directory for CSV/DSV/TSV (and optionally spreadsheet)
sources and writes one JSON dictionary per locale column.

Keys starting with $JII; or $FILE; can be diverted into structured JSON
collections or standalone files when the matching processor is enabled.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd)
		},
	}

	addOptionFlags(cmd)

	cmd.AddCommand(convertCmd())
	cmd.AddCommand(watchCmd())

	return cmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert the given files, honouring include/exclude patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args)
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Convert everything once, then re-convert files as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd)
		},
	}
}

// runScan handles the root command.
func runScan(cmd *cobra.Command) error {
	conv, err := newConverter(cmd)
	if err != nil {
		return err
	}

	_, err = conv.ScanConvert()
	return err
}

// runConvert handles the `convert` command.
func runConvert(cmd *cobra.Command, files []string) error {
	conv, err := newConverter(cmd)
	if err != nil {
		return err
	}

	var report convert.Report
	for _, f := range files {
		report.Add(conv.ProcessSheetFile(f))
	}

	log.Info().
		Int("processed", report.Processed).
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Conversion complete")

	if report.Failed > 0 {
		return fmt.Errorf("%d file(s) or output(s) failed", report.Failed)
	}
	return nil
}

// runWatch handles the `watch` command.
func runWatch(cmd *cobra.Command) error {
	ctx, cancel := setupContext()
	defer cancel()

	conv, err := newConverter(cmd)
	if err != nil {
		return err
	}

	return watch.New(conv).Run(ctx)
}

// newConverter layers defaults, the YAML file and explicitly set flags and
// builds a Converter with a fresh merge state.
func newConverter(cmd *cobra.Command) (*convert.Converter, error) {
	settings := config.Load()
	flags := cmd.Flags()

	level := settings.LogLevel
	if flags.Changed("log-level") {
		level, _ = flags.GetString("log-level")
	}
	if err := setLogLevel(level); err != nil {
		return nil, err
	}

	cwd := settings.WorkDir
	if flags.Changed("cwd") {
		cwd, _ = flags.GetString("cwd")
	}

	configPath := settings.ConfigPath
	if flags.Changed("config") {
		configPath, _ = flags.GetString("config")
	}
	if configPath != "" && cwd != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	fileOpts, err := config.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	flagOpts, err := optionsFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	resolved := config.Resolve(config.Merge(fileOpts, flagOpts))
	return convert.NewConverter(resolved, cwd, output.NewWriter(output.NewState()))
}

func setLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", config.ErrInvalidOption, level)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, stopping...")
		cancel()
	}()

	return ctx, cancel
}
