// Package rollbar reports error level log entries to Rollbar.
package rollbar

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/heroku/rollrus"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config for Rollbar.
type Config struct {
	Token string `env:"ROLLBAR_TOKEN"`
	Env   string `env:"ROLLBAR_ENV"`
}

// Setup installs a Rollbar hook on the standard logrus logger, which backs
// the loggers returned by svclog.NewLogger. Error, fatal and panic entries
// are reported: failing instrumentations, requests that panicked and
// startup failures.
//
// Setup is skipped if Token and Env are not present in the config.
func Setup(logger logrus.FieldLogger, cfg Config) {
	if cfg.Token == "" && cfg.Env == "" {
		logger.WithField("at", "skipping-rollbar").Info()
		return
	}

	logger.WithFields(logrus.Fields{
		"at":  "setup-rollbar",
		"env": cfg.Env,
	}).Info()

	hook := rollrus.NewHook(cfg.Token, cfg.Env,
		rollrus.WithIgnoreErrorFunc(shouldIgnore),
		rollrus.WithLevels(logrus.ErrorLevel, logrus.PanicLevel, logrus.FatalLevel),
	)

	logrus.AddHook(hook)
}

// ReportPanic logs a recovered panic at panic level, which reports it, and
// panics again. Use it deferred at the top of main.
func ReportPanic(logger logrus.FieldLogger) {
	if p := recover(); p != nil {
		logger.Panic(p)
	}
}

func shouldIgnore(err error) bool {
	root := rootError(err)

	for _, fn := range ignoreFuncs {
		if fn(root) {
			return true
		}
	}
	return false
}

var ignoreFuncs = []func(error) bool{
	isCanceledOrEOF,
	isTimeout,
	isOperationCanceled,
	isClosing,
}

// rootError unwraps url.Error. rollrus already applies errors.Cause.
func rootError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// isCanceledOrEOF covers clients going away mid-request, including
// handlers aborted with http.ErrAbortHandler, and canceled OTLP exports.
func isCanceledOrEOF(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, http.ErrAbortHandler) {
		return true
	}

	if s, ok := status.FromError(err); ok && s.Code() == codes.Canceled {
		return true
	}
	return false
}

func isTimeout(err error) bool {
	var e interface{ Timeout() bool }
	return errors.As(err, &e) && e.Timeout()
}

// isOperationCanceled matches the unexported net error returned when a
// dial is canceled through its context.
func isOperationCanceled(err error) bool {
	var e *net.OpError
	return errors.As(err, &e) && strings.Contains(err.Error(), "operation was canceled")
}

// isClosing matches gRPC transport errors of the OTLP exporter when the
// collector connection is torn down, e.g. during a collector deploy.
func isClosing(err error) bool {
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	return s.Code() == codes.Unavailable && s.Message() == "transport is closing"
}
