package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/urcl-project/urclvm/pkg/debugger"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("243"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	haltedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// eventMsg wraps a debugger.Event so bubbletea can dispatch it through Update.
type eventMsg debugger.Event

// waitForEvent converts the next debugger event into a tea.Cmd.
func waitForEvent(events <-chan debugger.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventMsg{Closed: true}
		}
		return eventMsg(event)
	}
}

// consoleHeight is the fixed number of visible lines in the scrollback
// viewport; SendConsole/%TEXT output beyond it scrolls with GotoBottom.
const consoleHeight = 8

type model struct {
	dbg    *debugger.Debugger
	events <-chan debugger.Event
	file   string

	status      *debugger.Status
	halted      bool
	consoleText strings.Builder
	console     viewport.Model
}

func newModel(dbg *debugger.Debugger, file string) model {
	vp := viewport.New(80, consoleHeight)
	return model{dbg: dbg, events: dbg.Events(), file: file, console: vp}
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.console.Width = msg.Width - 4
		m.console.Height = consoleHeight
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.dbg.Step()
			return m, nil
		case "o":
			m.dbg.StepOver()
			return m, nil
		case "O":
			m.dbg.StepOut()
			return m, nil
		case "c":
			m.dbg.FlushBreakpoints()
			m.dbg.Resume()
			return m, nil
		}
		var cmd tea.Cmd
		m.console, cmd = m.console.Update(msg)
		return m, cmd
	case eventMsg:
		if msg.Halted {
			m.halted = true
			return m, nil
		}
		switch {
		case msg.Open != nil:
			status := debugger.Status(*msg.Open)
			m.status = &status
		case msg.Output != "":
			m.consoleText.WriteString(msg.Output)
			m.console.SetContent(m.consoleText.String())
			m.console.GotoBottom()
		case msg.Closed:
			m.status = nil
		}
		return m, waitForEvent(m.events)
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("urcldbg -- %s", m.file)))
	b.WriteString("\n\n")

	switch {
	case m.halted:
		b.WriteString(haltedStyle.Render("halted"))
		b.WriteString("\n")
	case m.status == nil:
		b.WriteString(runningStyle.Render("running..."))
		b.WriteString("\n")
	default:
		b.WriteString(paneStyle.Render(m.renderStatus(*m.status)))
		b.WriteString("\n")
	}

	if m.consoleText.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("console (↑/↓ to scroll)"))
		b.WriteString("\n")
		b.WriteString(m.console.View())
	}

	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render("s step  o step-over  O step-out  c continue  q quit"))
	return b.String()
}

func (m model) renderStatus(status debugger.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "line %d\n\n", status.Line)

	fmt.Fprintln(&b, headerStyle.Render("registers"))
	names := make([]string, 0, len(status.Registers))
	values := map[string]uint64{}
	for _, r := range status.Registers {
		names = append(names, r.Name)
		values[r.Name] = r.Value
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-6s 0x%x\n", name, values[name])
	}

	fmt.Fprintln(&b, headerStyle.Render("call stack"))
	if len(status.CallStack) == 0 {
		fmt.Fprintln(&b, "  (empty)")
	}
	for _, frame := range status.CallStack {
		label := frame.Label
		if label == "" {
			label = fmt.Sprintf("0x%x", frame.Address)
		}
		fmt.Fprintf(&b, "  %s\n", label)
	}

	fmt.Fprintln(&b, headerStyle.Render("stack"))
	for _, cell := range status.Stack {
		fmt.Fprintf(&b, "  0x%x: 0x%x\n", cell.Address, cell.Value)
	}

	return b.String()
}
