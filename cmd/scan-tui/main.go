package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/scan-downloader/internal/config"
	"github.com/handiism/scan-downloader/internal/logging"
	"github.com/handiism/scan-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if *configFlag == "" {
		settings, err = config.DefaultSettings(), nil
	}
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to the TUI: the log only goes to the file.
	logger, closer, err := logging.New(logging.Options{Path: settings.LogFile, Verbose: settings.Verbose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
