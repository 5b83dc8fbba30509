package config

import (
	"time"

	"github.com/spf13/viper"
)

// Sentry config struct
type Sentry struct {
	Endpoint    string
	Environment string
	Release     string
}

// Tracer config struct for OpenTelemetry
type Tracer struct {
	Endpoint      string // OTLP gRPC endpoint
	SamplingRate  float64
	BatchTimeout  time.Duration
	ExportTimeout time.Duration
}

// Observes config struct
type Observes struct {
	Sentry *Sentry
	Tracer *Tracer
}

func getObservesConfig(v *viper.Viper) *Observes {
	return &Observes{
		Sentry: &Sentry{
			Endpoint:    v.GetString("observes.sentry.endpoint"),
			Environment: sentryEnvironment(v),
			Release:     v.GetString("observes.sentry.release"),
		},
		Tracer: &Tracer{
			Endpoint:      v.GetString("observes.tracer.endpoint"),
			SamplingRate:  v.GetFloat64("observes.tracer.sampling_rate"),
			BatchTimeout:  v.GetDuration("observes.tracer.batch_timeout"),
			ExportTimeout: v.GetDuration("observes.tracer.export_timeout"),
		},
	}
}

// sentryEnvironment falls back to the run mode
func sentryEnvironment(v *viper.Viper) string {
	if env := v.GetString("observes.sentry.environment"); env != "" {
		return env
	}
	return v.GetString("run_mode")
}
