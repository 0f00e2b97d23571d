package modules

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nodebbs/internal/app"
	"nodebbs/internal/nodes"
)

// terminalProbe is implemented by connections that speak to the remote
// terminal through the telnet engine.
type terminalProbe interface {
	BinaryMode() bool
	CursorPosition() (row, col int, ok bool)
	NegotiatedOptions() map[string]string
}

type DebugModule struct{}

func (m *DebugModule) Name() string {
	return "debug"
}

func (m *DebugModule) HandleCommand(w io.Writer, node *nodes.Node, cmd string, args string) (bool, error) {
	switch cmd {
	case "help":
		io.WriteString(w, "Debug commands: help, info, options, cursor, whoami, nodes, kick <node>, yell <msg>, box, tui\r\n")
		return true, nil
	case "info":
		info := node.Conn.GetTerminalInfo()
		fmt.Fprintf(w, "Terminal: %s (%dx%d) utf8=%t\r\n", orUnknown(info.Type), info.Width, info.Height, node.Conn.IsUTF8())
		if probe, ok := node.Conn.(terminalProbe); ok {
			fmt.Fprintf(w, "Binary mode: %t\r\n", probe.BinaryMode())
		}
		return true, nil
	case "options":
		probe, ok := node.Conn.(terminalProbe)
		if !ok {
			io.WriteString(w, "No telnet options on this connection.\r\n")
			return true, nil
		}
		opts := probe.NegotiatedOptions()
		names := make([]string, 0, len(opts))
		for name := range opts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%-16s %s\r\n", name, opts[name])
		}
		return true, nil
	case "cursor":
		probe, ok := node.Conn.(terminalProbe)
		if !ok {
			io.WriteString(w, "Cursor reports need a telnet connection.\r\n")
			return true, nil
		}
		if row, col, ok := probe.CursorPosition(); ok {
			fmt.Fprintf(w, "\r\nCursor was at row %d, column %d.\r\n", row, col)
		} else {
			io.WriteString(w, "\r\nYour terminal did not report its cursor position.\r\n")
		}
		return true, nil
	case "whoami":
		fmt.Fprintf(w, "You are %s on Node %d.\r\n", node.Username(), node.ID)
		return true, nil
	case "nodes":
		for _, n := range app.Nodes.Active() {
			fmt.Fprintf(w, "%3d  %-16s %s\r\n", n.ID, n.Username(), remoteAddr(n))
		}
		return true, nil
	case "kick":
		id, err := strconv.Atoi(args)
		if err != nil {
			io.WriteString(w, "Usage: kick <node>\r\n")
			return true, nil
		}
		if id == node.ID {
			io.WriteString(w, "Use exit to leave your own node.\r\n")
			return true, nil
		}
		if err := app.Nodes.Kick(id); err != nil {
			fmt.Fprintf(w, "Node %d: %v\r\n", id, err)
			return true, nil
		}
		app.Logger.Info("Node kicked", "node", id, "by", node.ID)
		fmt.Fprintf(w, "Node %d disconnected.\r\n", id)
		return true, nil
	case "yell":
		if args == "" {
			io.WriteString(w, "Usage: yell <message>\r\n")
			return true, nil
		}
		msg := fmt.Sprintf("\r\n[Node %d yells]: %s", node.ID, args)
		app.Nodes.BroadcastExcept(msg, node.ID)
		io.WriteString(w, "You yelled to everyone.\r\n")
		return true, nil
	case "box":
		io.WriteString(w, "\r\n"+nodeBox(node)+"\r\n")
		return true, nil
	case "tui":
		rw, ok := w.(io.ReadWriter)
		if !ok {
			io.WriteString(w, "Error: IO does not support reading for TUI\r\n")
			return true, nil
		}
		p := tea.NewProgram(newNodeList(app.Nodes.Active()), tea.WithInput(rw), tea.WithOutput(rw))
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(w, "Error running TUI: %v\r\n", err)
		}
		return true, nil
	}
	return false, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func remoteAddr(n *nodes.Node) string {
	if n.Conn == nil || n.Conn.RemoteAddr() == nil {
		return "-"
	}
	return n.Conn.RemoteAddr().String()
}

// asciiBorder is safe for CP437 and plain ANSI terminals.
var asciiBorder = lipgloss.Border{
	Top:         "-",
	Bottom:      "-",
	Left:        "|",
	Right:       "|",
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
}

func nodeBox(node *nodes.Node) string {
	border := asciiBorder
	if node.Conn != nil && node.Conn.IsUTF8() {
		border = lipgloss.RoundedBorder()
	}

	return lipgloss.NewStyle().
		BorderStyle(border).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(fmt.Sprintf("Node %d\n%s", node.ID, node.Username()))
}

// nodeList is a small Bubble Tea browser over the active nodes.
type nodeList struct {
	rows   []string
	cursor int
}

func newNodeList(active []*nodes.Node) nodeList {
	rows := make([]string, 0, len(active))
	for _, n := range active {
		rows = append(rows, fmt.Sprintf("%3d  %-16s %s", n.ID, n.Username(), remoteAddr(n)))
	}
	return nodeList{rows: rows}
}

func (m nodeList) Init() tea.Cmd {
	return nil
}

func (m nodeList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m nodeList) View() string {
	var b strings.Builder
	b.WriteString("Who's online\n\n")
	for i, row := range m.rows {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, row)
	}
	b.WriteString("\nPress q to quit.\n")
	return b.String()
}
