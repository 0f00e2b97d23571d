package telnet

import (
	"errors"
	"fmt"
	"net"

	"nodebbs/internal/app"
	"nodebbs/internal/config"
	"nodebbs/internal/session"
)

// Server accepts telnet callers and runs each on its own node.
type Server struct {
	cfg config.TelnetConfig
	ln  net.Listener
}

func NewServer() *Server {
	return &Server{cfg: app.Config.Listeners.Telnet}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return err
	}
	s.ln = ln
	defer ln.Close()

	app.Logger.Info("Telnet server listening", "port", s.cfg.Port, "binary", s.cfg.BinaryMode)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			app.Logger.Error("Telnet accept error", "err", err)
			continue
		}
		go s.serve(conn)
	}
}

func (s *Server) Stop() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) options() Options {
	return Options{
		Telnet:                true,
		Binary:                s.cfg.BinaryMode,
		ReadBufferSize:        s.cfg.ReadBufferSize,
		ScreenPositionTimeout: s.cfg.ScreenPositionTimeout.Std(),
	}
}

func (s *Server) serve(raw net.Conn) {
	conn := NewConnection(raw, app.Logger.With("addr", raw.RemoteAddr()), s.options())
	defer conn.Close()

	node, err := app.Nodes.Attach(conn)
	if err != nil {
		app.Logger.Warn("Telnet caller turned away: all nodes busy", "addr", raw.RemoteAddr())
		conn.Send("All nodes are busy. Please call back later.")
		return
	}
	defer app.Nodes.Release(node.ID)

	logger := app.Logger.With("node", node.ID)

	if err := conn.Open(); err != nil {
		logger.Error("Telnet connection failed to open", "addr", raw.RemoteAddr(), "err", err)
		return
	}
	defer logger.Info("Telnet connection closed", "addr", raw.RemoteAddr())

	s.negotiate(conn)

	// A cursor report doubles as ANSI detection
	if pos, ok := conn.ScreenPosition(); ok {
		logger.Debug("ANSI terminal detected", "row", pos.Row, "col", pos.Col)
	} else {
		logger.Info("No cursor report; terminal may not support ANSI", "addr", raw.RemoteAddr())
	}

	session.RunSession(conn, node, s.cfg.InitialView)
}

// negotiate opens with the options every caller gets and logs the outcome
// once the client has had time to answer.
func (s *Server) negotiate(conn *Connection) {
	conn.SendWill(Echo)
	conn.SendWill(SGA)
	conn.SendDo(NAWS)
	conn.SendDo(TType)
	if s.cfg.BinaryMode {
		conn.SendWill(TransmitBinary)
		conn.SendDo(TransmitBinary)
	}

	timeout := s.cfg.NegotiationTimeout.Std()
	if timeout <= 0 {
		timeout = DefaultNegotiationTimeout
	}
	conn.StartNegotiationLogger(timeout)
}
