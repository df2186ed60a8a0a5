// Package tui is the full-screen terminal interface of scan-downloader.
//
// The user enters a catalogue URL, toggles a few options for the run and
// follows the download chapter by chapter. Manager messages reach the
// program through a buffered channel; counters are polled on a tick.
//
// PromptURL offers the same URL input inline for the command line tool.
package tui
