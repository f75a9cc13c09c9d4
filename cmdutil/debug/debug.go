// Package debug runs a gops agent as a cmdutil.Server.
package debug

import (
	"fmt"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
)

// New initializes a debug server listening on the provided port of the
// loopback interface.
//
// Connect to the debug server with gops:
//
//	gops stack localhost:PORT
func New(l logrus.FieldLogger, cfg Config) *Server {
	return &Server{
		logger: l,
		addr:   fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		done:   make(chan struct{}),
	}
}

// Server wraps a gops agent for use with oklog/run.
type Server struct {
	logger logrus.FieldLogger
	addr   string
	done   chan struct{}
}

// Addr returns the address the agent listens on.
func (s *Server) Addr() string {
	return s.addr
}

// Run starts the gops agent and blocks until Stop is called.
func (s *Server) Run() error {
	s.logger.WithFields(logrus.Fields{
		"at":      "binding",
		"service": "debug",
		"addr":    s.addr,
	}).Info()

	opts := agent.Options{
		Addr:            s.addr,
		ShutdownCleanup: false,
	}
	if err := agent.Listen(opts); err != nil {
		return err
	}

	<-s.done
	return nil
}

// Stop shuts down the gops agent.
func (s *Server) Stop(_ error) {
	agent.Close()

	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
