package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/handiism/scan-downloader/internal/config"
	"github.com/handiism/scan-downloader/internal/download"
	scanprogress "github.com/handiism/scan-downloader/internal/progress"
)

type phase int

const (
	phaseInput phase = iota
	phaseScanning
	phaseDownloading
	phaseDone
	phaseFailed
)

func (p phase) terminal() bool {
	return p == phaseDone || p == phaseFailed
}

const (
	feedSize          = 10
	maxListedChapters = 8
	eventBuffer       = 64
)

// runOptions are the per-run toggles offered on the input screen.
type runOptions struct {
	archive bool
	jpeg    bool
	verbose bool
}

type feedEntry struct {
	text  string
	level download.ProgressLevel
}

// session is the state of one download started from the UI.
type session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	manager  *download.Manager
	chapters []string
	pages    int
}

func newSession() *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{ctx: ctx, cancel: cancel}
}

// Model is the Bubble Tea model of the application.
type Model struct {
	phase    phase
	settings *config.Settings
	logger   zerolog.Logger
	opts     runOptions
	keys     keyMap
	theme    theme

	url     textinput.Model
	spinner spinner.Model
	bar     progress.Model
	help    help.Model

	run     *session
	events  chan download.ProgressEvent
	feed    []feedEntry
	snap    scanprogress.Snapshot
	summary download.RunSummary
	err     error
}

// NewModel returns the model for the input screen. settings provide the
// defaults of every run and are never modified.
func NewModel(settings *config.Settings, logger zerolog.Logger) Model {
	th := defaultTheme()

	url := textinput.New()
	url.Placeholder = "https://anime-sama.fr/catalogue/one-piece/scan/vf/"
	url.CharLimit = 500
	url.Width = 60
	url.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(th.spinner))

	bar := progress.New(progress.WithGradient("#2A9D8F", "#E9C46A"), progress.WithWidth(50))

	return Model{
		phase:    phaseInput,
		settings: settings,
		logger:   logger,
		opts: runOptions{
			archive: settings.CreateArchive,
			jpeg:    settings.ConvertToJPEG,
			verbose: settings.Verbose,
		},
		keys:    defaultKeyMap(),
		theme:   th,
		url:     url,
		spinner: sp,
		bar:     bar,
		help:    help.New(),
		run:     newSession(),
		events:  make(chan download.ProgressEvent, eventBuffer),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

// runSettings copies the settings and applies the run options.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.CreateArchive = m.opts.archive
	s.ConvertToJPEG = m.opts.jpeg
	s.Verbose = m.opts.verbose
	return &s
}

func (m *Model) pushFeed(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !m.opts.verbose {
		return
	}
	m.feed = append(m.feed, feedEntry{text: event.Message, level: event.Level})
	if over := len(m.feed) - feedSize; over > 0 {
		m.feed = m.feed[over:]
	}
}

// reset prepares the model for another URL.
func (m Model) reset() (Model, tea.Cmd) {
	m.run.cancel()
	m.phase = phaseInput
	m.run = newSession()
	m.feed = nil
	m.snap = scanprogress.Snapshot{}
	m.summary = download.RunSummary{}
	m.err = nil
	m.url.SetValue("")
	return m, m.url.Focus()
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(settings *config.Settings, logger zerolog.Logger) error {
	_, err := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen()).Run()
	return err
}
