package main

import (
	"context"
	"fmt"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-realtime-vitals/internal/config"
	"github.com/ivanzxc/go-realtime-vitals/internal/driver"
	"github.com/ivanzxc/go-realtime-vitals/internal/logger"
	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
	"github.com/ivanzxc/go-realtime-vitals/internal/stream"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		natsURL  string
		subject  string
		fs       float64
		block    int
		hr       float64
		rr       float64
		interval time.Duration
		seed     int64
		kafkaOn  bool
	)

	cmd := &cobra.Command{
		Use:          "producer",
		Short:        "Genera las curvas del monitor y las publica a cadencia fija",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if f.Changed("nats") {
				cfg.NATS.URL = natsURL
			}
			if f.Changed("subject") {
				cfg.NATS.WaveSubject = subject
			}
			if f.Changed("fs") {
				cfg.Engine.SampleRate = fs
			}
			if f.Changed("block") {
				cfg.Engine.BlockSize = block
			}
			if f.Changed("hr") {
				cfg.Engine.HeartRate = hr
			}
			if f.Changed("rr") {
				cfg.Engine.RespRate = rr
			}
			if f.Changed("interval") {
				cfg.Driver.Interval = interval
			}
			if f.Changed("seed") {
				cfg.Engine.Seed = seed
			}
			if f.Changed("kafka") {
				cfg.Kafka.Enabled = kafkaOn
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file")
	f.StringVar(&natsURL, "nats", "nats://127.0.0.1:4222", "NATS url")
	f.StringVar(&subject, "subject", "monitor.wave", "waveform subject")
	f.Float64Var(&fs, "fs", 200, "sampling rate Hz")
	f.IntVar(&block, "block", 1024, "samples per block")
	f.Float64Var(&hr, "hr", 75, "heart rate bpm")
	f.Float64Var(&rr, "rr", 18, "respiratory rate rpm")
	f.DurationVar(&interval, "interval", 50*time.Millisecond, "wall-clock tick interval")
	f.Int64Var(&seed, "seed", 0, "noise seed (0 = time based)")
	f.BoolVar(&kafkaOn, "kafka", false, "also publish frames to Kafka")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(&cfg.Log)
	defer logger.Sync()

	engine, err := signal.NewEngine(cfg.SignalConfig(), signal.WithRates(cfg.Rates()))
	if err != nil {
		return err
	}

	source := uuid.New()

	nc, err := stream.Connect(cfg.NATS.URL, "vitals-producer", log)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Drain()

	sinks := []driver.Sink{
		stream.NewNATSSink(nc, cfg.NATS.WaveSubject, cfg.NATS.VitalsSubject, source),
	}
	if cfg.Kafka.Enabled {
		ks := stream.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, source)
		defer ks.Close()
		sinks = append(sinks, ks)
	}

	d := driver.New(engine,
		driver.WithInterval(cfg.Driver.Interval),
		driver.WithLogger(log.Named("driver")),
		driver.WithSinks(sinks...),
	)

	sub, err := stream.SubscribeRates(nc, cfg.NATS.RatesSubject, log, d.UpdateRates)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.NATS.RatesSubject, err)
	}
	defer sub.Unsubscribe()

	ctx, stop := osSignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("producer running",
		zap.String("source", source.String()),
		zap.Float64("fs", cfg.Engine.SampleRate),
		zap.Int("block", cfg.Engine.BlockSize),
		zap.Float64("hr", cfg.Engine.HeartRate),
		zap.Float64("rr", cfg.Engine.RespRate),
		zap.Bool("kafka", cfg.Kafka.Enabled))

	err = d.Run(ctx)

	st := d.Stats()
	log.Info("producer: stopping",
		zap.Uint64("ticks", st.Ticks),
		zap.Uint64("failures", st.Failures),
		zap.Uint64("sink_errors", st.SinkErrors),
		zap.Uint64("dropped", st.Dropped),
		zap.Duration("p99", st.P99))
	return err
}
