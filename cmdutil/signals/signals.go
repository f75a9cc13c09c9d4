// Package signals provides a signal handler which is usable as a cmdutil.Server.
package signals

import (
	"os"
	"os/signal"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/heroku/instrumentator/cmdutil"
)

// NewServer returns a cmdutil.Server whose Run returns once any of the
// provided signals is received, or when it is stopped. Run always returns
// a nil error, so a run.Group holding it shuts down cleanly on SIGTERM.
func NewServer(logger logrus.FieldLogger, signals ...os.Signal) cmdutil.Server {
	var (
		ch   = make(chan os.Signal, 1)
		stop = make(chan struct{})
		once sync.Once
	)

	return cmdutil.ServerFuncs{
		RunFunc: func() error {
			signal.Notify(ch, signals...)
			defer signal.Stop(ch)

			select {
			case sig := <-ch:
				logger.WithFields(logrus.Fields{
					"at":     "signal",
					"signal": sig.String(),
				}).Info()
			case <-stop:
			}
			return nil
		},
		StopFunc: func(error) {
			once.Do(func() { close(stop) })
		},
	}
}
