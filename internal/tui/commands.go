package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/scan-downloader/internal/download"
	scanprogress "github.com/handiism/scan-downloader/internal/progress"
)

var errCancelled = errors.New("cancelled by user")

type (
	eventMsg struct {
		event download.ProgressEvent
	}

	scannedMsg struct {
		manager  *download.Manager
		chapters []string
		pages    int
		err      error
	}

	finishedMsg struct {
		summary download.RunSummary
		snap    scanprogress.Snapshot
		err     error
	}

	tickMsg struct{}
)

func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-events}
	}
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// scan builds a manager for the URL and loads its catalog.
func (m Model) scan(url string) tea.Cmd {
	settings := m.runSettings()
	logger := m.logger
	events := m.events
	ctx := m.run.ctx

	return func() tea.Msg {
		// A slow UI drops messages instead of stalling the download.
		forward := func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		}

		manager := download.NewManager(settings, logger, nil, forward)
		if err := manager.Initialize(ctx, url); err != nil {
			return scannedMsg{err: err}
		}
		return scannedMsg{
			manager:  manager,
			chapters: manager.GetChapterNames(),
			pages:    manager.TotalPages(),
		}
	}
}

func (m Model) download() tea.Cmd {
	manager := m.run.manager
	ctx := m.run.ctx

	return func() tea.Msg {
		summary, err := manager.StartDownloads(ctx)
		return finishedMsg{summary: summary, snap: manager.Snapshot(), err: err}
	}
}
