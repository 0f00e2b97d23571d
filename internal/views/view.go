package views

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"nodebbs/internal/ansi"
	"nodebbs/internal/app"
	"nodebbs/internal/config"
	"nodebbs/internal/modules"
	"nodebbs/internal/nodes"
)

// Chains of timed "next" views longer than this are treated as a loop.
const maxAutoAdvance = 16

// Manager is one caller's position in the view graph: the current view and
// the trail that led to it.
type Manager struct {
	views    map[string]config.View
	registry *modules.Registry
	log      *slog.Logger
	trail    []string
	current  string
}

func NewManager(views map[string]config.View, registry *modules.Registry, initialView string) *Manager {
	return &Manager{
		views:    views,
		registry: registry,
		log:      app.Logger.With("component", "views"),
		current:  initialView,
	}
}

func (m *Manager) Current() string {
	return m.current
}

// Depth is the number of views behind the current one.
func (m *Manager) Depth() int {
	return len(m.trail)
}

func (m *Manager) Push(view string) {
	m.log.Debug("View push", "view", view, "from", m.current)
	if m.current != "" {
		m.trail = append(m.trail, m.current)
	}
	m.current = view
}

// Pop returns to the previous view. It returns "" and stays put when there
// is nowhere to go back to.
func (m *Manager) Pop() string {
	if len(m.trail) == 0 {
		return ""
	}
	last := len(m.trail) - 1
	m.log.Debug("View pop", "view", m.trail[last], "from", m.current)
	m.current, m.trail = m.trail[last], m.trail[:last]
	return m.current
}

func (m *Manager) lookup() (config.View, error) {
	v, ok := m.views[m.current]
	if !ok {
		return config.View{}, fmt.Errorf("view not found: %s", m.current)
	}
	return v, nil
}

// RenderCurrent draws the current view. A view with a timed "next" is shown
// for its delay and then replaced, so splash screens chain on their own.
func (m *Manager) RenderCurrent(w io.Writer, node *nodes.Node) error {
	utf8 := node.Conn != nil && node.Conn.IsUTF8()

	for i := 0; i < maxAutoAdvance; i++ {
		v, err := m.lookup()
		if err != nil {
			return err
		}
		if v.Art != "" {
			if err := ansi.RenderArt(w, v.Art, utf8); err != nil {
				return err
			}
		}

		if v.Next == nil || v.Next.Delay <= 0 {
			return nil
		}
		time.Sleep(v.Next.Delay.Std())
		m.Push(v.Next.View)
	}
	return fmt.Errorf("view %s: too many automatic transitions", m.current)
}

// HandleInput offers input to the current view's module, then its actions,
// then its press-any-key transition. It reports whether anything took it.
func (m *Manager) HandleInput(w io.Writer, input string, node *nodes.Node) (bool, error) {
	v, err := m.lookup()
	if err != nil {
		return false, err
	}

	if v.Module != "" {
		handled, err := m.delegate(w, v.Module, input, node)
		if err != nil || handled {
			return handled, err
		}
	}

	if next, ok := v.Actions[input]; ok {
		if strings.EqualFold(next, "back") {
			m.Pop()
		} else {
			m.Push(next)
		}
		return true, nil
	}

	if v.Next != nil && v.Next.Delay == 0 {
		m.Push(v.Next.View)
		return true, nil
	}
	return false, nil
}

func (m *Manager) delegate(w io.Writer, name, input string, node *nodes.Node) (bool, error) {
	handler, ok := m.registry.Get(name).(modules.CommandHandler)
	if !ok {
		m.log.Warn("View module cannot take commands", "module", name, "view", m.current)
		return false, nil
	}

	cmd, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	return handler.HandleCommand(w, node, cmd, strings.TrimSpace(args))
}
