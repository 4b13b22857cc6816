package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "toolhub/internal/modules/history/dto"
	"toolhub/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	Recent(ctx context.Context, limit int) ([]historydto.RunOutput, error)
	Stats(ctx context.Context) ([]historydto.ToolStatsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RunsLoadedMsg struct {
	Runs  []historydto.RunOutput
	Stats []historydto.ToolStatsOutput
	Err   error
}

// ─── list item ───────────────────────────────────────────────────────────────

type runItem struct {
	run historydto.RunOutput
}

func (i runItem) Title() string {
	mark := "✓"
	if !i.run.Success {
		mark = "✗"
	}
	return mark + " " + i.run.ToolID
}

func (i runItem) Description() string {
	return fmt.Sprintf("%s  %dms", i.run.CompletedAt.Format(time.RFC3339), i.run.DurationMS)
}

func (i runItem) FilterValue() string { return i.run.ToolID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   HistoryPort
	list   list.Model
	detail viewport.Model
	stats  []historydto.ToolStatsOutput
	width  int
	height int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	return Model{port: port, list: l, detail: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads the ledger; the app model calls it after each run.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.port.Recent(context.Background(), 0)
		if err != nil {
			return RunsLoadedMsg{Err: err}
		}
		stats, err := m.port.Stats(context.Background())
		return RunsLoadedMsg{Runs: runs, Stats: stats, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RunsLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "History — " + msg.Err.Error()
			return m, nil
		}
		m.stats = msg.Stats
		items := make([]list.Item, len(msg.Runs))
		for i, r := range msg.Runs {
			items[i] = runItem{run: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())
	}

	var lCmd tea.Cmd
	prevIdx := m.list.Index()
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		m.detail.SetContent(m.renderDetail())
	}

	var vCmd tea.Cmd
	m.detail, vCmd = m.detail.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(runItem)
	if !ok {
		return m.renderStats()
	}
	r := item.run

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.ToolID) + "\n\n")
	if r.Success {
		sb.WriteString(theme.Good.Render("succeeded") + "\n")
	} else {
		sb.WriteString(theme.Bad.Render("failed") + "\n")
	}
	sb.WriteString(theme.Muted.Render("when:     ") + r.CompletedAt.Format(time.RFC3339) + "\n")
	sb.WriteString(theme.Muted.Render("duration: ") + fmt.Sprintf("%dms", r.DurationMS) + "\n")
	if strings.TrimSpace(r.Output) != "" {
		sb.WriteString("\n" + theme.Muted.Render("output") + "\n" + r.Output + "\n")
	}
	if strings.TrimSpace(r.ErrorOutput) != "" {
		sb.WriteString("\n" + theme.Bad.Render("errors") + "\n" + r.ErrorOutput + "\n")
	}
	sb.WriteString("\n" + m.renderStats())
	return sb.String()
}

func (m Model) renderStats() string {
	if len(m.stats) == 0 {
		return theme.Muted.Render("no runs recorded yet")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Per-tool stats") + "\n")
	for _, s := range m.stats {
		sb.WriteString(fmt.Sprintf("%s  runs=%d  success=%.0f%%  avg=%dms\n",
			s.ToolID, s.Runs, s.SuccessRate*100, s.AvgDurationMS))
	}
	return sb.String()
}
