// Package cmdutil adapts the long running parts of a service (HTTP
// servers, metrics reporters, signal handlers) to oklog/run.
package cmdutil

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ShutdownTimeout bounds the graceful shutdown of servers returned by
// NewHTTPServer.
const ShutdownTimeout = 5 * time.Second

// A Server runs until it fails or is stopped. Add it to a run.Group with
//
//	g.Add(s.Run, s.Stop)
type Server interface {
	Run() error
	Stop(error)
}

// ServerFuncs implements Server with the provided functions.
type ServerFuncs struct {
	RunFunc  func() error
	StopFunc func(error)
}

// Run calls RunFunc.
func (sf ServerFuncs) Run() error {
	return sf.RunFunc()
}

// Stop calls StopFunc, if it's non-nil.
func (sf ServerFuncs) Stop(err error) {
	if sf.StopFunc != nil {
		sf.StopFunc(err)
	}
}

// NewContextServer returns a Server running fn with a context that is
// canceled on Stop.
func NewContextServer(fn func(context.Context) error) Server {
	ctx, cancel := context.WithCancel(context.Background())

	return ServerFuncs{
		RunFunc:  func() error { return fn(ctx) },
		StopFunc: func(error) { cancel() },
	}
}

// MultiServer groups srvs into one Server. It runs until Stop is called or
// any of srvs returns, and then stops all of them. With no srvs it runs
// until stopped.
func MultiServer(srvs ...Server) Server {
	var g run.Group

	s := NewContextServer(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	g.Add(s.Run, s.Stop)

	for _, srv := range srvs {
		g.Add(srv.Run, srv.Stop)
	}

	return ServerFuncs{
		RunFunc:  g.Run,
		StopFunc: s.Stop,
	}
}

// NewHTTPServer adapts srv to a Server. Run listens on srv.Addr and serves
// until Stop shuts the server down gracefully.
func NewHTTPServer(l logrus.FieldLogger, name string, srv *http.Server) Server {
	l = l.WithField("service", name)

	return ServerFuncs{
		RunFunc: func() error {
			l.WithFields(logrus.Fields{
				"at":   "binding",
				"addr": srv.Addr,
			}).Info()

			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listening on %s", srv.Addr)
			}
			defer ln.Close()

			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFunc: func(error) { gracefulShutdown(l, srv) },
	}
}

func gracefulShutdown(l logrus.FieldLogger, s *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	l.WithField("at", "graceful-shutdown").Info()
	if err := s.Shutdown(ctx); err != nil {
		l.WithField("at", "graceful-shutdown").WithError(err).Warn()
		s.Close()
	}
}
