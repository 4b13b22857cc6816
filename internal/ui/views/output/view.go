package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"toolhub/internal/ui/theme"
)

const maxLines = 2000

// Model shows the live output of the current tool run. Lines arrive
// through AppendLine from the app event loop; producer goroutines
// never touch this state.
type Model struct {
	view     viewport.Model
	lines    []string
	toolID   string
	running  bool
	progress int
	width    int
	height   int
}

func New() Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	return Model{view: vp, progress: -1}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.view.Width = size.Width - 2
		m.view.Height = size.Height - 3
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := theme.Title.Render("Output")
	if m.toolID != "" {
		header += "  " + theme.Muted.Render(m.toolID)
	}
	if m.running {
		header += "  " + theme.Hot.Render("running")
		if m.progress >= 0 {
			header += theme.Hot.Render(fmt.Sprintf(" %d%%", m.progress))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.view.View())
}

// ─── state transitions, driven by the app model ─────────────────────────────

func (m *Model) StartRun(toolID string) {
	m.toolID = toolID
	m.running = true
	m.progress = -1
	m.lines = m.lines[:0]
	m.refresh()
}

func (m *Model) AppendLine(line string, isError bool) {
	if isError {
		line = theme.Bad.Render(line)
	}
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.refresh()
}

func (m *Model) SetProgress(percent int) {
	m.progress = percent
}

func (m *Model) FinishRun(success bool, summary string) {
	m.running = false
	m.progress = -1
	if success {
		m.lines = append(m.lines, theme.Good.Render(summary))
	} else {
		m.lines = append(m.lines, theme.Bad.Render(summary))
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.view.SetContent(strings.Join(m.lines, "\n"))
	m.view.GotoBottom()
}
