package tui

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPromptCancelled is returned by PromptURL when the user quits without an answer.
var ErrPromptCancelled = errors.New("prompt cancelled")

type promptModel struct {
	input     textinput.Model
	keys      keyMap
	theme     theme
	value     string
	cancelled bool
}

func newPromptModel() promptModel {
	ti := textinput.New()
	ti.Placeholder = "https://anime-sama.fr/catalogue/one-piece/scan/vf/"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	return promptModel{input: ti, keys: defaultKeyMap(), theme: defaultTheme()}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.ForceQuit, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			if v := strings.TrimSpace(m.input.Value()); v != "" {
				m.value = v
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.value != "" || m.cancelled {
		return ""
	}
	return m.theme.heading.Render("Enter catalogue URL:") + "\n" + m.input.View() + "\n" +
		m.theme.muted.Render("enter: confirm • esc: cancel") + "\n"
}

// PromptURL asks for the catalogue URL of a work on a single input line.
func PromptURL(in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(newPromptModel(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m := final.(promptModel)
	if m.cancelled || m.value == "" {
		return "", ErrPromptCancelled
	}
	return m.value, nil
}
