package instrumentation

import "os"

// Exporter names for metrics.
const (
	ExporterPrometheus = "prometheus"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config controls the instrumentation provider.
type Config struct {
	// Enabled turns instrumentation on or off globally.
	Enabled bool

	// ServiceName identifies this service in metric resource attributes.
	ServiceName string

	// ServiceVersion is the build version, set from the binary's version.
	ServiceVersion string

	// ServiceInstanceID identifies this instance; defaults to the hostname.
	ServiceInstanceID string

	// MetricsExporter selects the exporter: prometheus, stdout or none.
	MetricsExporter string
}

// DefaultConfig returns the default instrumentation configuration,
// honoring INSTRUMENTATION_ENABLED and METRICS_EXPORTER overrides.
func DefaultConfig() Config {
	cfg := Config{
		Enabled:         true,
		ServiceName:     "calassist",
		ServiceVersion:  "dev",
		MetricsExporter: ExporterPrometheus,
	}

	if os.Getenv("INSTRUMENTATION_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if exporter := os.Getenv("METRICS_EXPORTER"); exporter != "" {
		cfg.MetricsExporter = exporter
	}

	return cfg
}
