package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectCall modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	world    *demoWorld
	inputs   []textinput.Model
	result   string
	buffer   string
	err      error
	width    int
	selected int
	focusIdx int
	state    modelState
}

func runInteractive(logger *zap.Logger) error {
	ctx := context.Background()
	world, err := newDemoWorld(ctx, logger)
	if err != nil {
		return err
	}
	defer world.Close()

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	m := interactiveModel{world: world, width: width}
	_, err = tea.NewProgram(m).Run()
	return err
}

func (m interactiveModel) Init() tea.Cmd {
	return nil
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case stateSelectCall:
			return m.updateSelect(msg)
		case stateInputArgs:
			return m.updateInput(msg)
		case stateShowResult:
			switch msg.String() {
			case "q", "ctrl+c", "esc":
				return m, tea.Quit
			default:
				m.state = stateSelectCall
				return m, nil
			}
		}
	}
	return m, nil
}

func (m interactiveModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.world.calls)-1 {
			m.selected++
		}
	case "enter":
		m.inputs = make([]textinput.Model, 2)
		for i := range m.inputs {
			ti := textinput.New()
			ti.Placeholder = fmt.Sprintf("arg%d", i)
			ti.CharLimit = 32
			ti.Width = 20
			m.inputs[i] = ti
		}
		m.inputs[0].Focus()
		m.focusIdx = 0
		m.state = stateInputArgs
	}
	return m, nil
}

func (m interactiveModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateSelectCall
		return m, nil
	case "tab", "shift+tab":
		m.inputs[m.focusIdx].Blur()
		m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
		m.inputs[m.focusIdx].Focus()
		return m, nil
	case "enter":
		if m.focusIdx < len(m.inputs)-1 {
			m.inputs[m.focusIdx].Blur()
			m.focusIdx++
			m.inputs[m.focusIdx].Focus()
			return m, nil
		}
		c := &m.world.calls[m.selected]
		m.result, m.err = c.invoke(m.world, c, m.inputs[0].Value(), m.inputs[1].Value())
		m.buffer = hexBytes(m.world.caller.last)
		m.state = stateShowResult
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("ffirun") + "\n")
	b.WriteString(helpStyle.Render(strings.Repeat("─", min(m.width, 60))) + "\n\n")

	switch m.state {
	case stateSelectCall:
		for i, c := range m.world.calls {
			line := fmt.Sprintf("  %-8s %s", c.name, c.signature)
			if i == m.selected {
				line = selectedStyle.Render("▸" + line[1:])
			} else {
				line = sigStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("↑/↓ select · enter call · q quit"))
	case stateInputArgs:
		c := m.world.calls[m.selected]
		b.WriteString(sigStyle.Render("  "+c.signature) + "\n\n")
		for i := range m.inputs {
			b.WriteString("  " + m.inputs[i].View() + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("tab next field · enter call · esc back"))
	case stateShowResult:
		c := m.world.calls[m.selected]
		b.WriteString(sigStyle.Render("  "+c.signature) + "\n\n")
		if m.err != nil {
			b.WriteString("  " + errorStyle.Render(m.err.Error()) + "\n")
		} else {
			b.WriteString("  values buffer: " + bufStyle.Render(m.buffer) + "\n")
			b.WriteString("  result:        " + resultStyle.Render(m.result) + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("any key back · q quit"))
	}
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
