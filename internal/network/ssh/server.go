package ssh

import (
	"errors"
	"fmt"

	"github.com/gliderlabs/ssh"

	"nodebbs/internal/app"
	"nodebbs/internal/config"
	"nodebbs/internal/session"
	"nodebbs/internal/store"
)

type userKey struct{}

// Server accepts password-authenticated SSH callers onto free nodes.
type Server struct {
	cfg    config.SSHConfig
	server *ssh.Server
}

func NewServer() *Server {
	return &Server{cfg: app.Config.Listeners.SSH}
}

func (s *Server) ListenAndServe() error {
	s.server = &ssh.Server{
		Addr:            fmt.Sprintf(":%d", s.cfg.Port),
		Handler:         s.handle,
		PasswordHandler: s.authenticate,
		IdleTimeout:     s.cfg.IdleTimeout.Std(),
	}
	if err := s.server.SetOption(ssh.HostKeyFile(s.cfg.KeyFile)); err != nil {
		return fmt.Errorf("ssh host key %s: %w", s.cfg.KeyFile, err)
	}

	app.Logger.Info("SSH server listening", "port", s.cfg.Port, "idle", s.cfg.IdleTimeout.Std())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// authenticate checks the password and counts the call.
func (s *Server) authenticate(ctx ssh.Context, password string) bool {
	user, err := app.Store.Authenticate(ctx.User(), password)
	if err != nil {
		app.Logger.Debug("SSH login refused", "user", ctx.User(), "addr", ctx.RemoteAddr(), "err", err)
		return false
	}
	if err := app.Store.RecordCall(user); err != nil {
		app.Logger.Warn("Failed to record call", "user", user.Username, "err", err)
	}
	ctx.SetValue(userKey{}, user)
	return true
}

func (s *Server) handle(sess ssh.Session) {
	conn := NewConnection(sess)

	node, err := app.Nodes.Attach(conn)
	if err != nil {
		app.Logger.Warn("SSH caller turned away: all nodes busy", "addr", sess.RemoteAddr())
		conn.Send("All nodes are busy. Please call back later.")
		sess.Exit(1)
		return
	}
	defer app.Nodes.Release(node.ID)

	if user, ok := sess.Context().Value(userKey{}).(*store.User); ok {
		node.User = user
	}

	logger := app.Logger.With("node", node.ID)
	info := conn.GetTerminalInfo()
	logger.Info("SSH connection established",
		"user", node.Username(),
		"addr", sess.RemoteAddr(),
		"terminal", info.Type,
		"window", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"utf8", conn.IsUTF8(),
	)
	defer logger.Info("SSH connection closed", "addr", sess.RemoteAddr())

	session.RunSession(conn, node, s.cfg.InitialView)
}
