package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-20, 20), 80)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case eventMsg:
		m.pushFeed(msg.event)
		return m, waitForEvent(m.events)

	case scannedMsg:
		if m.phase != phaseScanning {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseFailed
			m.err = msg.err
			return m, nil
		}
		m.run.manager = msg.manager
		m.run.chapters = msg.chapters
		m.run.pages = msg.pages
		m.phase = phaseDownloading
		return m, tea.Batch(m.download(), tick())

	case tickMsg:
		if m.phase != phaseDownloading || m.run.manager == nil {
			return m, nil
		}
		m.snap = m.run.manager.Snapshot()
		return m, tea.Batch(m.bar.SetPercent(m.fraction()), tick())

	case finishedMsg:
		m.summary = msg.summary
		m.snap = msg.snap
		switch {
		case m.run.ctx.Err() != nil:
			m.phase = phaseFailed
			m.err = errCancelled
		case msg.err != nil:
			m.phase = phaseFailed
			m.err = msg.err
		default:
			m.phase = phaseDone
		}
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.run.cancel()
		return m, tea.Quit
	}

	switch m.phase {
	case phaseInput:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			url := strings.TrimSpace(m.url.Value())
			if url == "" {
				return m, nil
			}
			m.phase = phaseScanning
			return m, tea.Batch(m.scan(url), m.spinner.Tick)
		case key.Matches(msg, m.keys.ToggleArchive):
			m.opts.archive = !m.opts.archive
			return m, nil
		case key.Matches(msg, m.keys.ToggleJPEG):
			m.opts.jpeg = !m.opts.jpeg
			return m, nil
		case key.Matches(msg, m.keys.ToggleVerbose):
			m.opts.verbose = !m.opts.verbose
			return m, nil
		}
		return m.updateInput(msg)

	case phaseScanning, phaseDownloading:
		if key.Matches(msg, m.keys.Cancel) {
			m.run.cancel()
			m.phase = phaseFailed
			m.err = errCancelled
		}

	case phaseDone, phaseFailed:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			return m.reset()
		}
	}

	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase != phaseInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.url, cmd = m.url.Update(msg)
	return m, cmd
}

// fraction is the share of catalog pages that reached a terminal state.
func (m Model) fraction() float64 {
	if m.run.pages == 0 {
		return 0
	}
	return float64(m.snap.FilesDone+m.snap.FilesFailed) / float64(m.run.pages)
}
