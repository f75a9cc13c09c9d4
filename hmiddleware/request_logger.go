package hmiddleware

import (
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/heroku/instrumentator"
)

// RequestLogger logs one line per finished request. It is an
// instrumentation: add it to an httpmetrics.Instrumentator so that it sees
// the same normalized handler and status as the metrics.
type RequestLogger struct {
	Logger logrus.FieldLogger
}

// NewRequestLogger returns a RequestLogger writing to l.
func NewRequestLogger(l logrus.FieldLogger) *RequestLogger {
	return &RequestLogger{Logger: l}
}

// Observe implements instrumentator.Instrumentation.
func (l *RequestLogger) Observe(info instrumentator.Info) {
	fields := logrus.Fields{
		"at":      "finish",
		"method":  info.Method,
		"handler": info.ModifiedHandler,
		"status":  info.ModifiedStatus,
		"service": fmt.Sprintf("%dms", time.Duration(info.ModifiedDuration*float64(time.Second))/time.Millisecond),
	}

	if r := info.Request; r != nil {
		fields["path"] = r.URL.RequestURI()
		fields["remote_addr"] = r.RemoteAddr
		fields["user_agent"] = r.UserAgent()
		if id := middleware.GetReqID(r.Context()); id != "" {
			fields["request_id"] = id
		}
		if robot := r.Header.Get("X-Heroku-Robot"); robot != "" {
			fields["robot"] = robot
		}
	}

	if n, ok := info.ResponseContentLength(); ok {
		fields["bytes"] = int64(n)
	}

	entry := l.Logger.WithFields(fields)
	if info.Response == nil {
		entry.Error("request failed")
		return
	}
	entry.Info()
}
