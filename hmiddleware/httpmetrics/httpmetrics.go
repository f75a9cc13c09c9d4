package httpmetrics

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/kit/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heroku/instrumentator"
	"github.com/heroku/instrumentator/cmdutil/svclog"
	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// Instrumentator extracts an instrumentator.Info from every completed
// request and dispatches it to the registered instrumentations.
type Instrumentator struct {
	cfg              Config
	excluded         []*regexp.Regexp
	route            RouteFunc
	inferLength      bool
	logger           logrus.FieldLogger
	sampler          *svclog.SampleLogger
	inProgress       metrics.Gauge
	instrumentations []instrumentator.Instrumentation
}

// Option configures an Instrumentator.
type Option func(*Instrumentator)

// WithRouteFunc replaces ChiRoute as the route template resolver.
func WithRouteFunc(fn RouteFunc) Option {
	return func(in *Instrumentator) {
		in.route = fn
	}
}

// WithLogger sets the logger used to report failing instrumentations. It
// defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(in *Instrumentator) {
		in.logger = l
	}
}

// InferResponseContentLength sets the response Content-Length seen by the
// instrumentations to the number of bytes written, for responses whose
// handler did not set the header.
func InferResponseContentLength() Option {
	return func(in *Instrumentator) {
		in.inferLength = true
	}
}

// New returns an Instrumentator. p is only used for the in-progress gauge;
// instrumentations build their own instruments.
func New(p xmetrics.Provider, cfg Config, opts ...Option) (*Instrumentator, error) {
	in := &Instrumentator{
		cfg:    cfg,
		route:  ChiRoute,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.sampler = svclog.NewSampleLogger(in.logger.WithField("at", "instrumentation"), 10, time.Second)

	for _, expr := range cfg.ExcludedHandlers {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling excluded handler %q", expr)
		}
		in.excluded = append(in.excluded, re)
	}

	if cfg.InProgress {
		var labels []string
		if cfg.InProgressLabels {
			labels = []string{"handler", "method"}
		}
		g, err := p.NewGauge(xmetrics.Opts{
			Name:       cfg.InProgressName,
			Help:       "Number of HTTP requests in progress.",
			LabelNames: labels,
		})
		if err != nil {
			return nil, err
		}
		in.inProgress = g
	}

	return in, nil
}

// Add registers instrumentations. They are called in the order they were
// added. Add must not be called once the handler is serving requests.
func (in *Instrumentator) Add(is ...instrumentator.Instrumentation) *Instrumentator {
	in.instrumentations = append(in.instrumentations, is...)
	return in
}

// Handler is a chi compatible middleware instrumenting every request served
// by next.
//
// If next panics, the instrumentations see a nil Response and a 500 status
// before the panic is propagated.
func (in *Instrumentator) Handler(next http.Handler) http.Handler {
	if !in.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g := in.inProgressGauge(r); g != nil {
			g.Add(1)
			defer g.Add(-1)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				in.finish(r, nil, time.Since(start))
				panic(p)
			}
		}()

		next.ServeHTTP(ww, r)
		in.finish(r, in.response(ww), time.Since(start))
	})
}

func (in *Instrumentator) finish(r *http.Request, resp *instrumentator.Response, d time.Duration) {
	template, _ := in.route(r)
	if info, ok := in.Extract(r, resp, template, d); ok {
		in.Dispatch(info)
	}
}

// response snapshots the written status and headers.
func (in *Instrumentator) response(ww middleware.WrapResponseWriter) *instrumentator.Response {
	status := ww.Status()
	if status == 0 {
		// Assume no Write or WriteHeader means OK.
		status = http.StatusOK
	}

	header := ww.Header()
	if in.inferLength && header.Get("Content-Length") == "" {
		header = header.Clone()
		header.Set("Content-Length", strconv.Itoa(ww.BytesWritten()))
	}
	return &instrumentator.Response{StatusCode: status, Header: header}
}

// Extract builds the Info of a completed request. An empty template marks a
// request that matched no route. A nil resp is reported with a 500 status.
//
// ok is false if the request must not be instrumented, because it is
// untemplated and IgnoreUntemplated is set or because it matches one of
// ExcludedHandlers.
func (in *Instrumentator) Extract(r *http.Request, resp *instrumentator.Response, template string, d time.Duration) (info instrumentator.Info, ok bool) {
	handler, ok := in.handler(r, template)
	if !ok {
		return instrumentator.Info{}, false
	}

	status := http.StatusInternalServerError
	if resp != nil {
		status = resp.StatusCode
	}

	return instrumentator.Info{
		Request:          r,
		Response:         resp,
		Method:           r.Method,
		ModifiedHandler:  handler,
		ModifiedStatus:   in.status(status),
		ModifiedDuration: in.duration(d),
	}, true
}

// handler applies the untemplated and exclusion policies to the template
// of r.
func (in *Instrumentator) handler(r *http.Request, template string) (string, bool) {
	templated := template != ""
	if !templated {
		if in.cfg.IgnoreUntemplated {
			return "", false
		}
		template = r.URL.Path
	}

	for _, re := range in.excluded {
		if re.MatchString(template) {
			return "", false
		}
	}

	if !templated && in.cfg.GroupUntemplated {
		return Untemplated, true
	}
	return template, true
}

func (in *Instrumentator) status(code int) string {
	s := strconv.Itoa(code)
	if in.cfg.GroupStatusCodes && len(s) == 3 {
		return s[:1] + "xx"
	}
	return s
}

func (in *Instrumentator) duration(d time.Duration) float64 {
	s := d.Seconds()
	if !in.cfg.RoundLatency {
		return s
	}
	p := math.Pow10(in.cfg.RoundLatencyDecimals)
	return math.Round(s*p) / p
}

// inProgressGauge returns the in-progress series of r, or nil if in-progress
// tracking is off or r is not instrumented.
func (in *Instrumentator) inProgressGauge(r *http.Request) metrics.Gauge {
	if in.inProgress == nil {
		return nil
	}
	template, _ := in.route(r)
	handler, ok := in.handler(r, template)
	if !ok {
		return nil
	}
	if !in.cfg.InProgressLabels {
		return in.inProgress
	}
	return in.inProgress.With("handler", handler, "method", r.Method)
}

// Dispatch calls every instrumentation with info. A panicking
// instrumentation is logged and does not prevent the others from running.
func (in *Instrumentator) Dispatch(info instrumentator.Info) {
	for _, i := range in.instrumentations {
		in.observe(i, info)
	}
}

func (in *Instrumentator) observe(i instrumentator.Instrumentation, info instrumentator.Info) {
	defer func() {
		if p := recover(); p != nil {
			in.sampler.Error(logrus.Fields{
				"handler":         info.ModifiedHandler,
				"method":          info.Method,
				"instrumentation": fmt.Sprintf("%T", i),
				"panic":           fmt.Sprint(p),
			}, "instrumentation panicked")
		}
	}()
	i.Observe(info)
}
