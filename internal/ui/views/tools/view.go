package tools

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "toolhub/internal/modules/catalog/dto"
	preflightdto "toolhub/internal/modules/preflight/dto"
	"toolhub/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type CatalogPort interface {
	List(ctx context.Context) ([]catalogdto.ToolOutput, error)
	Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ToolsLoadedMsg struct {
	Tools []catalogdto.ToolOutput
	Err   error
}

type ReportLoadedMsg struct {
	ToolID string
	Report preflightdto.ReportOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type toolItem struct {
	tool catalogdto.ToolOutput
}

func (i toolItem) Title() string       { return i.tool.Title }
func (i toolItem) Description() string { return i.tool.ID }
func (i toolItem) FilterValue() string { return i.tool.Title + " " + i.tool.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    CatalogPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	report  *ReportLoadedMsg
	loading bool
	width   int
	height  int
}

func New(port CatalogPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Tools"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		detail:  vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadToolsCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ToolsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Tools — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Tools))
		for i, t := range msg.Tools {
			items[i] = toolItem{tool: t}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case ReportLoadedMsg:
		m.report = &msg
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.report = nil
			m.detail.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading catalog…")
	}

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

// SelectedToolID returns the current selection's tool ID, if any.
func (m Model) SelectedToolID() (string, bool) {
	if item, ok := m.list.SelectedItem().(toolItem); ok {
		return item.tool.ID, true
	}
	return "", false
}

// SelectedToolTitle returns the current selection's title.
func (m Model) SelectedToolTitle() string {
	if item, ok := m.list.SelectedItem().(toolItem); ok {
		return item.tool.Title
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Preflight loads the check battery for a tool into the detail pane.
func (m Model) Preflight(toolID string) tea.Cmd {
	return func() tea.Msg {
		report, err := m.port.Preflight(context.Background(), toolID)
		return ReportLoadedMsg{ToolID: toolID, Report: report, Err: err}
	}
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
	item, ok := m.list.SelectedItem().(toolItem)
	if !ok {
		return theme.Muted.Render("Select a tool to see details")
	}
	t := item.tool

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(t.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + t.ID + "\n")
	if t.Description != "" {
		sb.WriteString(theme.Muted.Render("about:    ") + t.Description + "\n")
	}
	sb.WriteString(theme.Muted.Render("script:   ") + t.ScriptPath + "\n")
	if t.RequiresElevation {
		sb.WriteString(theme.Hot.Render("requires elevated privileges") + "\n")
	}
	if t.RequiresConnection {
		sb.WriteString(theme.Muted.Render("requires data endpoint connectivity") + "\n")
	}
	if len(t.Dependencies) > 0 {
		sb.WriteString(theme.Muted.Render("deps:     ") + strings.Join(t.Dependencies, ", ") + "\n")
	}

	if m.report != nil && m.report.ToolID == t.ID {
		sb.WriteString("\n" + theme.Title.Render("Pre-flight") + "\n")
		if m.report.Err != nil {
			sb.WriteString(theme.Bad.Render(m.report.Err.Error()) + "\n")
		} else {
			for _, check := range m.report.Report.Checks {
				mark := theme.Good.Render("✓")
				if !check.Passed {
					mark = theme.Bad.Render("✗")
				}
				sb.WriteString(mark + " " + check.Name)
				if check.Message != "" {
					sb.WriteString("  " + theme.Muted.Render(check.Message))
				}
				sb.WriteString("\n")
			}
		}
	}

	sb.WriteString("\n" + theme.Muted.Render("enter: run  p: pre-flight"))
	return sb.String()
}

func (m Model) loadToolsCmd() tea.Cmd {
	return func() tea.Msg {
		tools, err := m.port.List(context.Background())
		return ToolsLoadedMsg{Tools: tools, Err: err}
	}
}
