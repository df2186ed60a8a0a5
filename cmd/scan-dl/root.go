package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/scan-downloader/internal/config"
	"github.com/handiism/scan-downloader/internal/download"
	"github.com/handiism/scan-downloader/internal/logging"
	"github.com/handiism/scan-downloader/internal/progress"
	"github.com/handiism/scan-downloader/internal/tui"
)

type options struct {
	configPath  string
	output      string
	logFile     string
	batchSize   int
	archive     bool
	convertJPEG bool
	verbose     bool
	dryRun      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "scan-dl [url]",
		Short: "Download manga scans from a catalogue site",
		Long: "Download every chapter of a work listed in its episodes.js manifest,\n" +
			"one directory per chapter, and pack each chapter into a .cbz archive.\n\n" +
			"Without a URL argument the URL is asked interactively.\n" +
			"For the full-screen interface, use: scan-tui",
		Example:       "  scan-dl https://anime-sama.fr/catalogue/one-piece/scan/vf/ --batch-size 8",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	flags.StringVarP(&opts.output, "output", "o", "", "Output directory (overrides config)")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file (overrides config)")
	flags.IntVarP(&opts.batchSize, "batch-size", "b", 0, "Concurrent downloads per batch (overrides config)")
	flags.BoolVar(&opts.archive, "archive", true, "Pack each chapter into an archive")
	flags.BoolVar(&opts.convertJPEG, "convert-jpeg", false, "Convert pages to JPEG")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show verbose output")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "List chapters without downloading")

	return cmd
}

// loadSettings reads the config file and applies the flags that were set.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configPath != "" {
		var err error
		settings, err = config.Load(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		settings.DownloadsPath = opts.output
	}
	if flags.Changed("log-file") {
		settings.LogFile = opts.logFile
	}
	if flags.Changed("batch-size") {
		settings.BatchSize = opts.batchSize
	}
	if flags.Changed("archive") {
		settings.CreateArchive = opts.archive
	}
	if flags.Changed("convert-jpeg") {
		settings.ConvertToJPEG = opts.convertJPEG
	}
	if flags.Changed("verbose") {
		settings.Verbose = opts.verbose
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	var url string
	if len(args) > 0 {
		url = args[0]
	} else {
		url, err = tui.PromptURL(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}

	logger, closer, err := logging.New(logging.Options{
		Path:    settings.LogFile,
		Console: cmd.ErrOrStderr(),
		Verbose: settings.Verbose,
	})
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	// Handle interrupts
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()

	var observer progress.Observer
	if !opts.dryRun {
		observer = progress.NewConsole(cmd.ErrOrStderr())
	}

	manager := download.NewManager(settings, logger, observer, printer(out, settings.Verbose))

	fmt.Fprintln(out, "📚 Scan Downloader")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out)

	if err := manager.Initialize(ctx, url); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if opts.dryRun {
		for _, name := range manager.GetChapterNames() {
			fmt.Fprintf(out, "   %s\n", name)
		}
		fmt.Fprintln(out, "\n[Dry run - not downloading]")
		return nil
	}

	fmt.Fprintln(out, "\n📥 Starting downloads...")
	fmt.Fprintln(out)

	summary, err := manager.StartDownloads(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}
		return err
	}

	printSummary(out, summary)
	return nil
}

// printer prints manager messages. Errors are not printed: the logger
// already mirrors them to stderr.
func printer(out io.Writer, verbose bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		var prefix string
		switch event.Level {
		case download.LevelError:
			return
		case download.LevelVerbose:
			if !verbose {
				return
			}
			prefix = "   "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		default:
			prefix = "ℹ️  "
		}
		fmt.Fprintln(out, prefix+event.Message)
	}
}

func printSummary(out io.Writer, summary download.RunSummary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(out, "✨ Complete! %d chapters, %d pages (%s)\n",
		summary.Chapters, summary.Succeeded, progress.FormatBytes(summary.Bytes))
	if len(summary.Failed) > 0 {
		fmt.Fprintf(out, "   %d pages failed:\n", len(summary.Failed))
		for _, res := range summary.Failed {
			fmt.Fprintf(out, "   - %s\n", res.Task.Destination)
		}
	}
	if len(summary.Archives) > 0 {
		fmt.Fprintf(out, "   %d archives written\n", len(summary.Archives))
	}
	if len(summary.PackagingErrors) > 0 {
		fmt.Fprintf(out, "   %d chapters could not be archived\n", len(summary.PackagingErrors))
	}
}
