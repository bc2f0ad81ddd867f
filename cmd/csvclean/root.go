package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"csvclean/internal/logging"
	"csvclean/internal/metrics"
	"csvclean/internal/metrics/datadog"
	"csvclean/internal/metrics/prompush"
)

type globalFlags struct {
	logLevel  string
	logFormat string

	metricsBackend string
	pushgatewayURL string
	statsdAddr     string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cobra.EnableCommandSorting = false

	root := &cobra.Command{
		Use:           "csvclean",
		Short:         "Clean CSV exports: slug headers, drop columns, split a column",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(g.logLevel, g.logFormat)
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", `log level ("debug", "info", "warn", "error")`)
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", `log format ("text" or "json")`)
	root.PersistentFlags().StringVar(&g.metricsBackend, "metrics-backend", "none", `metrics backend ("none", "pushgateway", "datadog")`)
	root.PersistentFlags().StringVar(&g.pushgatewayURL, "pushgateway-url", "http://localhost:9091", "Pushgateway base URL")
	root.PersistentFlags().StringVar(&g.statsdAddr, "statsd-addr", "127.0.0.1:8125", "DogStatsD address")

	root.AddCommand(newRunCmd(g), newValidateCmd(), newHeadersCmd())
	return root
}

// setupMetrics installs the selected backend and returns a function that
// flushes it and restores the no-op backend.
func setupMetrics(g *globalFlags, job string) (func(), error) {
	var b metrics.Backend
	switch g.metricsBackend {
	case "", "none":
		return func() {}, nil
	case "pushgateway":
		pb, err := prompush.NewBackend(job, g.pushgatewayURL)
		if err != nil {
			return nil, err
		}
		b = pb
	case "datadog":
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       g.statsdAddr,
			Namespace:  "csvclean.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			return nil, err
		}
		b = db
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", g.metricsBackend)
	}

	metrics.SetBackend(b)
	slog.Debug("metrics enabled", "backend", g.metricsBackend)
	return func() {
		if err := metrics.Flush(); err != nil {
			slog.Warn("metrics flush failed", "backend", g.metricsBackend, "err", err)
		}
		metrics.Reset()
	}, nil
}
