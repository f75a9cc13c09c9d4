package httpmetrics

// Untemplated is the handler label of requests that matched no route
// template when Config.GroupUntemplated is set.
const Untemplated = "none"

// Config controls how request attributes are normalized.
//
// The zero Config disables the middleware; use DefaultConfig or decode it
// from the environment with envdecode.
type Config struct {
	// Enabled turns the middleware on. When false Handler returns the
	// wrapped handler unchanged.
	Enabled bool `env:"ENABLE_METRICS,default=true"`

	// GroupStatusCodes reports status codes by class, e.g. "2xx".
	GroupStatusCodes bool `env:"METRICS_GROUP_STATUS_CODES,default=true"`

	// IgnoreUntemplated skips requests that matched no route template.
	// With ChiRoute, unmatched requests below a mounted router carry the
	// mount template and are not skipped.
	IgnoreUntemplated bool `env:"METRICS_IGNORE_UNTEMPLATED,default=false"`

	// GroupUntemplated reports requests that matched no route template
	// with the Untemplated handler instead of their raw path.
	GroupUntemplated bool `env:"METRICS_GROUP_UNTEMPLATED,default=true"`

	// RoundLatency rounds durations to RoundLatencyDecimals decimals.
	RoundLatency         bool `env:"METRICS_ROUND_LATENCY,default=false"`
	RoundLatencyDecimals int  `env:"METRICS_ROUND_LATENCY_DECIMALS,default=4"`

	// ExcludedHandlers are regular expressions matched against the route
	// template, or the raw path of untemplated requests. Matching requests
	// are not instrumented. Separate multiple expressions with ";".
	ExcludedHandlers []string `env:"METRICS_EXCLUDED_HANDLERS"`

	// InProgress tracks the number of requests being served in a gauge
	// named InProgressName. With InProgressLabels the gauge is labeled by
	// handler and method.
	InProgress       bool   `env:"METRICS_INPROGRESS,default=false"`
	InProgressName   string `env:"METRICS_INPROGRESS_NAME,default=http_requests_inprogress"`
	InProgressLabels bool   `env:"METRICS_INPROGRESS_LABELS,default=false"`
}

// DefaultConfig returns the configuration used when no environment
// overrides it.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		GroupStatusCodes:     true,
		GroupUntemplated:     true,
		RoundLatencyDecimals: 4,
		InProgressName:       "http_requests_inprogress",
	}
}
