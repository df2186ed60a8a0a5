package tui

import (
	"fmt"
	"strings"

	"github.com/handiism/scan-downloader/internal/download"
	scanprogress "github.com/handiism/scan-downloader/internal/progress"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.title.Render("📚 Scan Downloader"))
	b.WriteString("\n")
	b.WriteString(m.theme.muted.Render("Manga scans, one archive per chapter"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseInput:
		m.viewInput(&b)
	case phaseScanning:
		fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), m.theme.heading.Render("Reading episodes.js..."))
		m.viewFeed(&b)
	case phaseDownloading:
		m.viewDownload(&b)
	case phaseDone:
		m.viewSummary(&b)
	case phaseFailed:
		b.WriteString(m.theme.bad.Render("❌ Download stopped:"))
		b.WriteString("\n\n")
		if m.err != nil {
			fmt.Fprintf(&b, "  %v\n\n", m.err)
		}
		m.viewFeed(&b)
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.bindings(m.phase)))
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput(b *strings.Builder) {
	b.WriteString(m.theme.heading.Render("Enter catalogue URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.url.View())
	b.WriteString("\n\n")

	fmt.Fprintf(b, "  %s Pack chapters into .%s\n", checkbox(m.opts.archive), m.settings.ArchiveExtension)
	fmt.Fprintf(b, "  %s Convert pages to JPEG\n", checkbox(m.opts.jpeg))
	fmt.Fprintf(b, "  %s Show verbose messages\n\n", checkbox(m.opts.verbose))

	b.WriteString(m.theme.muted.Render(fmt.Sprintf("Saving to %s, %d pages at a time",
		m.settings.DownloadsPath, m.settings.BatchSize)))
	b.WriteString("\n")
}

func (m Model) viewDownload(b *strings.Builder) {
	chapters := m.run.chapters
	b.WriteString(m.theme.ok.Render(fmt.Sprintf("%d chapters:", len(chapters))))
	b.WriteString("\n")
	for i, name := range chapters {
		if i == maxListedChapters {
			b.WriteString(m.theme.muted.Render(fmt.Sprintf("  ... and %d more", len(chapters)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(m.theme.chapter.Render("  ▸ " + name))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.bar.ViewAs(m.fraction()))
	b.WriteString("\n")

	done := m.snap.FilesDone + m.snap.FilesFailed
	status := fmt.Sprintf("Pages %d/%d, %s", done, m.run.pages, scanprogress.FormatBytes(m.snap.BytesReceived))
	if m.snap.Label != "" {
		status += fmt.Sprintf(" | %s batch %d/%d (%d/%d)", m.snap.Label,
			m.snap.BatchIndex+1, m.snap.BatchCount, m.snap.BatchDone, m.snap.BatchSize)
	}
	b.WriteString(m.theme.info.Render(status))
	b.WriteString("\n\n")

	m.viewFeed(b)
}

func (m Model) viewSummary(b *strings.Builder) {
	s := m.summary
	lines := []string{
		"✨ Download complete",
		"",
		fmt.Sprintf("Chapters: %d", s.Chapters),
		fmt.Sprintf("Pages: %d (%d failed)", s.Succeeded, len(s.Failed)),
		fmt.Sprintf("Archives: %d", len(s.Archives)),
		fmt.Sprintf("Size: %s", scanprogress.FormatBytes(m.snap.BytesReceived)),
	}
	if s.Normalized > 0 {
		lines = append(lines, fmt.Sprintf("Converted to JPEG: %d", s.Normalized))
	}
	if n := len(s.PackagingErrors); n > 0 {
		lines = append(lines, fmt.Sprintf("Not archived: %d", n))
	}
	b.WriteString(m.theme.panel.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
}

func (m Model) viewFeed(b *strings.Builder) {
	for _, e := range m.feed {
		style, mark := m.theme.muted, "·"
		switch e.level {
		case download.LevelError:
			style, mark = m.theme.bad, "✗"
		case download.LevelWarning:
			style, mark = m.theme.warn, "!"
		case download.LevelSuccess:
			style, mark = m.theme.ok, "✓"
		case download.LevelInfo:
			style, mark = m.theme.info, "›"
		}
		b.WriteString(style.Render(mark + " " + e.text))
		b.WriteString("\n")
	}
}
