// Command slotsim replays a YAML scenario of shadow-tree mutations and prints
// the coalesced slotchange notifications.
//
// Usage:
//
//	slotsim -scenario card.yaml [-config shadowslot.yaml] [-check] [-dump]
//	        [-nats nats://127.0.0.1:4222 [-kv] [-watch]] [-metrics] [-log-level debug]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/shadowslot"
	"github.com/arloliu/shadowslot/internal/logging"
	"github.com/arloliu/shadowslot/internal/metrics"
	"github.com/arloliu/shadowslot/notify"
	"github.com/arloliu/shadowslot/subscription"
	"github.com/arloliu/shadowslot/types"
)

type flags struct {
	scenario    string
	config      string
	check       bool
	dump        bool
	natsURL     string
	kv          bool
	watch       bool
	showMetrics bool
	logLevel    string
}

func main() {
	var f flags
	flag.StringVar(&f.scenario, "scenario", "", "Path to scenario file (required)")
	flag.StringVar(&f.config, "config", "", "Path to shadowslot configuration file")
	flag.BoolVar(&f.check, "check", false, "Verify bookkeeping invariants after every step")
	flag.BoolVar(&f.dump, "dump", false, "Dump the final assignment state")
	flag.StringVar(&f.natsURL, "nats", "", "Publish notifications to this NATS server")
	flag.BoolVar(&f.kv, "kv", false, "Also store assignment snapshots in JetStream KV (requires -nats)")
	flag.BoolVar(&f.watch, "watch", false, "Log batches received back from NATS (requires -nats)")
	flag.BoolVar(&f.showMetrics, "metrics", false, "Print collected metrics at the end")
	flag.StringVar(&f.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logging.NewText(os.Stderr, f.logLevel)
	if f.scenario == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, os.Stdout, log); err != nil {
		log.Fatal("slotsim failed", "error", err)
	}
}

func run(ctx context.Context, f flags, out io.Writer, log types.Logger) error {
	sc, err := LoadScenarioFile(f.scenario)
	if err != nil {
		return err
	}

	cfg := shadowslot.DefaultConfig()
	if f.config != "" {
		cfg, err = shadowslot.LoadConfigFile(f.config)
		if err != nil {
			return err
		}
	}
	if f.check {
		cfg.ConsistencyChecks = true
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

	dispatchers, cleanup, err := publishers(ctx, f, cfg, log, collector)
	if err != nil {
		return err
	}
	defer cleanup()

	runner, err := NewRunner(sc, &cfg, RunnerOptions{
		Out:         out,
		Check:       f.check,
		Dispatchers: dispatchers,
		Options:     []shadowslot.Option{shadowslot.WithMetrics(collector)},
		Logger:      log,
	})
	if err != nil {
		return err
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}
	log.Info("scenario finished", "name", sc.Name, "steps", len(sc.Steps), "notifications", runner.Printed())

	if f.dump {
		runner.Dump()
	}
	if f.showMetrics {
		return printMetrics(out, reg)
	}

	return nil
}

func publishers(
	ctx context.Context,
	f flags,
	cfg shadowslot.Config,
	log types.Logger,
	collector types.MetricsCollector,
) ([]types.Dispatcher, func(), error) {
	if f.natsURL == "" {
		if f.kv || f.watch {
			return nil, nil, errors.New("-kv and -watch require -nats")
		}

		return nil, func() {}, nil
	}

	nc, err := nats.Connect(f.natsURL, nats.Name("slotsim"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	cleanup := func() { _ = nc.Drain() }

	common := []notify.Option{
		notify.WithLogger(log),
		notify.WithMetrics(collector),
		notify.WithTimeout(cfg.Publish.OperationTimeout),
	}
	pub, err := notify.NewNATSPublisher(nc, cfg.Publish.Subject, common...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	dispatchers := []types.Dispatcher{pub}

	if f.kv {
		js, err := jetstream.New(nc)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("jetstream: %w", err)
		}
		kvPub, err := notify.NewKVPublisher(ctx, js, cfg.Publish.KVBucket,
			append(common, notify.WithKeyPrefix("slotsim"))...)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		dispatchers = append(dispatchers, kvPub)
	}

	if f.watch {
		w, err := subscription.NewWatcher(nc, subscription.Config{Subject: cfg.Publish.Subject, Logger: log},
			subscription.HandlerFunc(func(_ context.Context, b subscription.Batch) error {
				log.Info("batch received", "instance", b.Instance, "sequence", b.Sequence,
					"notifications", len(b.Notifications), "missed", b.Missed)
				return nil
			}))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := w.Start(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		drain := cleanup
		cleanup = func() {
			_ = w.Stop()
			drain()
		}
	}

	return dispatchers, cleanup, nil
}

// printMetrics writes every gathered counter and histogram count.
func printMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(out, "%s%s count=%d sum=%g\n", mf.GetName(), labels,
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}

	return nil
}
