package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"nodebbs/internal/ansi"
	"nodebbs/internal/app"
	"nodebbs/internal/modules"
	"nodebbs/internal/nodes"
	"nodebbs/internal/views"
)

// Session represents an active user session.
type Session struct {
	rw   io.ReadWriter
	node *nodes.Node
	vm   *views.Manager
	term *term.Terminal
}

// RunSession drives one caller until they leave or the connection drops.
func RunSession(rw io.ReadWriter, node *nodes.Node, initialView string) {
	registry := modules.NewRegistry()
	registry.Register(&modules.DebugModule{})

	New(rw, node, views.NewManager(app.Config.Views, registry, initialView)).Run()
}

// New builds a session. Callers on a legacy terminal get CP437 translation
// for line editing; art is still written through untranslated.
func New(rw io.ReadWriter, node *nodes.Node, vm *views.Manager) *Session {
	s := &Session{
		rw:   rw,
		node: node,
		vm:   vm,
	}

	lineIO := rw
	if node.Conn != nil && !node.Conn.IsUTF8() {
		lineIO = ansi.NewCodePageReadWriter(rw)
	}
	s.term = term.NewTerminal(lineIO, fmt.Sprintf("[%s] > ", node.Username()))
	return s
}

func (s *Session) Run() {
	s.render()

	for {
		line, err := s.term.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				app.Logger.Error("Error reading line", "err", err)
			}
			return
		}

		cmd := strings.TrimSpace(line)
		if cmd == "exit" || cmd == "quit" {
			s.term.Write([]byte("Goodbye!\r\n"))
			return
		}
		if cmd == "" {
			continue
		}

		if s.vm.Current() != "" {
			handled, err := s.vm.HandleInput(s.rw, cmd, s.node)
			if err != nil {
				app.Logger.Error("View input failed", "view", s.vm.Current(), "err", err)
			}
			if handled {
				s.render()
				continue
			}
		}

		fmt.Fprintf(s.term, "Unknown command: %s\r\n", cmd)
	}
}

func (s *Session) render() {
	if s.vm.Current() == "" {
		return
	}
	if err := s.vm.RenderCurrent(s.rw, s.node); err != nil {
		app.Logger.Error("Failed to render view", "view", s.vm.Current(), "err", err)
	}
}
