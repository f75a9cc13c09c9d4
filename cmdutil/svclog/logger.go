// Package svclog provides logging facilities for standard services.
package svclog

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config for logger.
type Config struct {
	AppName  string `env:"APP_NAME,required"`
	Deploy   string `env:"DEPLOY,required"`
	Dyno     string `env:"DYNO"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// NewLogger returns a new logger that includes app and deploy key/value pairs
// in each log line.
func NewLogger(cfg Config) logrus.FieldLogger {
	logger := logrus.WithFields(logrus.Fields{
		"app":    cfg.AppName,
		"deploy": cfg.Deploy,
	})
	if cfg.Dyno != "" {
		logger = logger.WithField("dyno", cfg.Dyno)
	}

	if l, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(l)
	}
	return logger
}

// SampleLogger logs at most logsBurstLimit entries per logBurstWindow and
// drops the rest. It is meant for errors raised per request.
type SampleLogger struct {
	logger  logrus.FieldLogger
	limiter *rate.Limiter
}

// NewSampleLogger creates a rate limited logger that samples logs
// configurable per window.
func NewSampleLogger(logger logrus.FieldLogger, logsBurstLimit int, logBurstWindow time.Duration) *SampleLogger {
	limiter := rate.NewLimiter(rate.Every(logBurstWindow), logsBurstLimit)
	return &SampleLogger{
		logger:  logger,
		limiter: limiter,
	}
}

// Printf logs at info level when the sample allows it.
func (l *SampleLogger) Printf(format string, args ...interface{}) {
	if l.limiter.Allow() {
		l.logger.Printf(format, args...)
	}
}

// Error logs msg with fields at error level when the sample allows it.
// It reports whether the entry was logged.
func (l *SampleLogger) Error(fields logrus.Fields, msg string) bool {
	if !l.limiter.Allow() {
		return false
	}
	l.logger.WithFields(fields).Error(msg)
	return true
}
