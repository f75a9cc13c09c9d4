// Command instrumentd is a small demo web service showing the HTTP
// instrumentation wired to the metrics backends configured in its
// environment.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joeshaw/envdecode"
	"github.com/oklog/run"

	"github.com/heroku/instrumentator"
	"github.com/heroku/instrumentator/cmdutil"
	"github.com/heroku/instrumentator/cmdutil/debug"
	"github.com/heroku/instrumentator/cmdutil/metrics"
	"github.com/heroku/instrumentator/cmdutil/rollbar"
	"github.com/heroku/instrumentator/cmdutil/signals"
	"github.com/heroku/instrumentator/cmdutil/svclog"
	"github.com/heroku/instrumentator/hmiddleware"
	"github.com/heroku/instrumentator/hmiddleware/httpmetrics"
)

type config struct {
	Port int `env:"PORT,default=8080"`

	// Subsystem is applied to the default HTTP metrics, e.g. "web"
	// produces web_http_requests_total.
	Subsystem string `env:"METRICS_SUBSYSTEM"`

	Logger      svclog.Config
	Metrics     metrics.Config
	Debug       debug.Config
	Rollbar     rollbar.Config
	HTTPMetrics httpmetrics.Config
}

func main() {
	var cfg config
	envdecode.MustStrictDecode(&cfg)

	logger := svclog.NewLogger(cfg.Logger)
	rollbar.Setup(logger, cfg.Rollbar)
	defer rollbar.ReportPanic(logger)

	backends, err := metrics.New(context.Background(), logger, cfg.Metrics, cfg.Logger.AppName, cfg.Logger.Deploy)
	if err != nil {
		logger.WithError(err).Fatal()
	}
	defer backends.Provider.Stop()

	in, err := httpmetrics.New(backends.Provider, cfg.HTTPMetrics, httpmetrics.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Fatal()
	}
	in.Add(
		instrumentator.Must(instrumentator.Default(
			backends.Provider,
			instrumentator.WithSubsystem(cfg.Subsystem),
		)),
		hmiddleware.NewRequestLogger(logger),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(in.Handler)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Get("/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "hello %s\n", chi.URLParam(r, "name"))
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		if r.ContentLength > 0 {
			w.Header().Set("Content-Length", fmt.Sprint(r.ContentLength))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, r.Body)
	})
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
			w.WriteHeader(http.StatusNoContent)
		case <-r.Context().Done():
		}
	})

	var g run.Group
	add := func(s cmdutil.Server) { g.Add(s.Run, s.Stop) }

	add(cmdutil.NewHTTPServer(logger, "web", &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}))
	add(cmdutil.MultiServer(backends.Servers...))
	if cfg.Debug.Port != 0 {
		add(debug.New(logger, cfg.Debug))
	}
	add(signals.NewServer(logger, os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		logger.WithError(err).Error("exiting")
	}
}
