package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cachedto "toolhub/internal/modules/cache/dto"
	catalogdto "toolhub/internal/modules/catalog/dto"
	preflightdto "toolhub/internal/modules/preflight/dto"
	apperrors "toolhub/internal/platform/errors"
	"toolhub/internal/platform/notify"
	"toolhub/internal/ui/components"
	"toolhub/internal/ui/theme"
	historyview "toolhub/internal/ui/views/history"
	outputview "toolhub/internal/ui/views/output"
	toolsview "toolhub/internal/ui/views/tools"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type catalogPort interface {
	List(ctx context.Context) ([]catalogdto.ToolOutput, error)
	Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error)
	Run(ctx context.Context, input catalogdto.RunInput) (catalogdto.RunOutput, error)
}

type runnerPort interface {
	Stop()
	Active() bool
}

type cachePort interface {
	ClearAll(ctx context.Context) error
	SweepExpired(ctx context.Context) (cachedto.SweepOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTools tabID = iota
	tabOutput
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Tools", "Output", "History"}

// ─── async messages ───────────────────────────────────────────────────────────

type runFinishedMsg struct {
	toolID string
	out    catalogdto.RunOutput
	err    error
}

// queueTickMsg triggers a drain of the notification queue while a run
// is producing output in the background.
type queueTickMsg struct{}

// cacheOpMsg reports the outcome of a palette-issued cache operation.
type cacheOpMsg struct {
	status string
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab       key.Binding
	Help      key.Binding
	Palette   key.Binding
	Quit      key.Binding
	Run       key.Binding
	Preflight key.Binding
	Stop      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Run:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run tool")),
		Preflight: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pre-flight")),
		Stop:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop run")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Run, k.Preflight},
		{k.Stop},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the command
// palette, and the run lifecycle. Run output is produced by a background
// goroutine into the bounded queue and drained here, so only the event
// loop ever mutates view state.
type Model struct {
	catalog catalogPort
	runner  runnerPort
	cache   cachePort
	queue   *notify.Queue

	toolsView   toolsview.Model
	outputView  outputview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	running   bool
	status    string
	width     int
	height    int
}

func NewModel(catalog catalogPort, runner runnerPort, cache cachePort, history historyview.HistoryPort) Model {
	return Model{
		catalog:     catalog,
		runner:      runner,
		cache:       cache,
		queue:       notify.NewQueue(512),
		toolsView:   toolsview.New(catalogPortBridge{p: catalog}),
		outputView:  outputview.New(),
		historyView: historyview.New(history),
		activeTab:   tabTools,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.toolsView.Init(), m.historyView.Init())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case queueTickMsg:
		m.drainQueue()
		if m.running {
			cmds = append(cmds, queueTick())
		}

	case runFinishedMsg:
		m.running = false
		m.drainQueue()
		switch {
		case errors.Is(msg.err, apperrors.ErrPreFlightHold):
			m.outputView.FinishRun(false, "blocked by pre-flight checks")
			m.status = "pre-flight hold: " + msg.toolID
			m.toolsView, _ = m.toolsView.Update(toolsview.ReportLoadedMsg{
				ToolID: msg.toolID,
				Report: msg.out.Report,
			})
			m.activeTab = tabTools
		case msg.err != nil:
			m.outputView.FinishRun(false, msg.err.Error())
			m.status = "run failed: " + msg.err.Error()
		default:
			exec := msg.out.Execution
			summary := fmt.Sprintf("finished in %s", exec.Duration.Round(time.Millisecond))
			if !exec.Success {
				summary = "failed, " + summary
			}
			m.outputView.FinishRun(exec.Success, summary)
			if exec.Success {
				m.status = "run succeeded: " + msg.toolID
			} else {
				m.status = "run failed: " + msg.toolID
			}
		}
		cmds = append(cmds, m.historyView.Refresh())

	case cacheOpMsg:
		if msg.err != nil {
			m.status = "cache operation failed: " + msg.err.Error()
		} else {
			m.status = msg.status
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.running {
				m.runner.Stop()
			}
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "enter":
			if m.activeTab == tabTools {
				if id, ok := m.toolsView.SelectedToolID(); ok {
					return m.startRun(id, false)
				}
			}
		case "p":
			if m.activeTab == tabTools {
				if id, ok := m.toolsView.SelectedToolID(); ok {
					cmds = append(cmds, m.toolsView.Preflight(id))
				}
			}
		case "x":
			if m.running {
				m.runner.Stop()
				m.status = "stopping run"
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTools:
		m.toolsView, tabCmd = m.toolsView.Update(msg)
	case tabOutput:
		m.outputView, tabCmd = m.outputView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTools:
		return m.toolsView.View()
	case tabOutput:
		return m.outputView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "toolhub  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.running {
		left = theme.Hot.Render("● running") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected, _ := m.toolsView.SelectedToolID()

	toolArg := func() string {
		if len(parts) >= 2 {
			return parts[1]
		}
		return selected
	}

	switch parts[0] {
	case "tool:run":
		if toolArg() == "" {
			m.status = "no tool selected"
			return m, nil
		}
		return m.startRun(toolArg(), false)

	case "tool:force-run":
		if toolArg() == "" {
			m.status = "no tool selected"
			return m, nil
		}
		return m.startRun(toolArg(), true)

	case "tool:preflight":
		if toolArg() == "" {
			m.status = "no tool selected"
			return m, nil
		}
		m.activeTab = tabTools
		return m, m.toolsView.Preflight(toolArg())

	case "run:stop":
		if m.running {
			m.runner.Stop()
			m.status = "stopping run"
		} else {
			m.status = "no run in progress"
		}
		return m, nil

	case "cache:sweep":
		m.status = "sweeping cache"
		return m, m.sweepCacheCmd()

	case "cache:clear":
		m.status = "clearing cache"
		return m, m.clearCacheCmd()

	case "history:refresh":
		m.activeTab = tabHistory
		return m, m.historyView.Refresh()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabTools:
		return m.toolsView.Filtering()
	case tabHistory:
		return m.historyView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.toolsView, _ = m.toolsView.Update(sz)
	m.outputView, _ = m.outputView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func (m *Model) drainQueue() {
	for {
		n, ok := m.queue.Next()
		if !ok {
			return
		}
		switch n.Level {
		case notify.LevelProgress:
			m.outputView.SetProgress(n.Percent)
		case notify.LevelError:
			m.outputView.AppendLine(n.Message, true)
		default:
			m.outputView.AppendLine(n.Message, false)
		}
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) startRun(toolID string, force bool) (tea.Model, tea.Cmd) {
	if m.running {
		m.status = "a run is already in progress"
		return m, nil
	}
	m.running = true
	m.status = "running: " + toolID
	m.outputView.StartRun(toolID)
	m.activeTab = tabOutput
	return m, tea.Batch(m.runToolCmd(toolID, force), queueTick())
}

// runToolCmd executes the tool in the command goroutine; the sink
// callbacks publish into the bounded queue, which the event loop
// drains on queue ticks.
func (m Model) runToolCmd(toolID string, force bool) tea.Cmd {
	queue := m.queue
	return func() tea.Msg {
		out, err := m.catalog.Run(context.Background(), catalogdto.RunInput{
			ToolID: toolID,
			Force:  force,
			OnOutput: func(line string) {
				queue.Publish(notify.Notification{Level: notify.LevelInfo, Message: line})
			},
			OnError: func(line string) {
				queue.Publish(notify.Notification{Level: notify.LevelError, Message: line})
			},
			OnProgress: func(percent int) {
				queue.Publish(notify.Notification{Level: notify.LevelProgress, Percent: percent})
			},
		})
		return runFinishedMsg{toolID: toolID, out: out, err: err}
	}
}

func (m Model) sweepCacheCmd() tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		out, err := cache.SweepExpired(context.Background())
		if err != nil {
			return cacheOpMsg{err: err}
		}
		return cacheOpMsg{status: fmt.Sprintf("cache sweep removed %d expired artifacts", out.Removed)}
	}
}

func (m Model) clearCacheCmd() tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		if err := cache.ClearAll(context.Background()); err != nil {
			return cacheOpMsg{err: err}
		}
		return cacheOpMsg{status: "cache cleared"}
	}
}

func queueTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return queueTickMsg{}
	})
}

// ─── port bridges ─────────────────────────────────────────────────────────────

type catalogPortBridge struct{ p catalogPort }

func (b catalogPortBridge) List(ctx context.Context) ([]catalogdto.ToolOutput, error) {
	return b.p.List(ctx)
}

func (b catalogPortBridge) Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error) {
	return b.p.Preflight(ctx, toolID)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
