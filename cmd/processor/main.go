package main

import (
	"context"
	"fmt"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-realtime-vitals/internal/analysis"
	"github.com/ivanzxc/go-realtime-vitals/internal/config"
	"github.com/ivanzxc/go-realtime-vitals/internal/logger"
	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
	"github.com/ivanzxc/go-realtime-vitals/internal/stream"
)

type ParamMsg struct {
	Subject  string                      `json:"subject"`
	Source   string                      `json:"source"`
	Seq      uint64                      `json:"seq"`
	Ts       int64                       `json:"ts"`
	HR       int                         `json:"hr,omitempty"`
	Channels map[string]analysis.Summary `json:"channels"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile, natsURL, in, out string

	cmd := &cobra.Command{
		Use:          "processor",
		Short:        "Mide la FC sobre el ECG recibido y publica parámetros",
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
			if f.Changed("in") {
				cfg.NATS.WaveSubject = in
			}
			if f.Changed("out") {
				cfg.NATS.ParamsSubject = out
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file")
	f.StringVar(&natsURL, "nats", "nats://127.0.0.1:4222", "NATS url")
	f.StringVar(&in, "in", "monitor.wave", "input subject")
	f.StringVar(&out, "out", "monitor.params", "output subject")
	return cmd
}

// processor mantiene un detector por fuente; lo usa un solo callback de NATS.
type processor struct {
	subject   string
	detectors map[uuid.UUID]*sourceState
	now       func() time.Time
}

type sourceState struct {
	detector *analysis.HRDetector
	lastSeq  uint64
	hr       int
}

func newProcessor(subject string) *processor {
	return &processor{
		subject:   subject,
		detectors: make(map[uuid.UUID]*sourceState),
		now:       time.Now,
	}
}

// handle decodifica un frame y arma el mensaje de parámetros.
func (p *processor) handle(data []byte) (ParamMsg, error) {
	f, err := stream.DecodeFrame(data)
	if err != nil {
		return ParamMsg{}, err
	}

	st, ok := p.detectors[f.Source]
	if !ok {
		st = &sourceState{detector: analysis.NewHRDetector()}
		p.detectors[f.Source] = st
	} else if f.Seq != st.lastSeq+1 {
		// hueco en la secuencia: el intervalo R-R ya no es confiable
		st.detector.Reset()
	}
	st.lastSeq = f.Seq

	if bpm, ok := st.detector.ProcessBlock(f.Float64(signal.ECG), f.Start, f.SampleRate); ok {
		st.hr = bpm
	}

	msg := ParamMsg{
		Subject:  p.subject,
		Source:   f.Source.String(),
		Seq:      f.Seq,
		Ts:       p.now().UnixMilli(),
		HR:       st.hr,
		Channels: make(map[string]analysis.Summary, len(signal.Channels())),
	}
	for _, c := range signal.Channels() {
		msg.Channels[c.String()] = analysis.Summarize(f.Float64(c))
	}
	return msg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(&cfg.Log)
	defer logger.Sync()

	nc, err := stream.Connect(cfg.NATS.URL, "vitals-processor", log)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Drain()

	p := newProcessor(cfg.NATS.ParamsSubject)

	_, err = nc.Subscribe(cfg.NATS.WaveSubject, func(msg *nats.Msg) {
		param, err := p.handle(msg.Data)
		if err != nil {
			log.Warn("bad frame", zap.Error(err))
			return
		}

		b, err := stream.Marshal(param)
		if err != nil {
			log.Error("marshal params", zap.Error(err))
			return
		}
		if err := nc.Publish(cfg.NATS.ParamsSubject, b); err != nil {
			log.Warn("publish params", zap.Error(err))
			return
		}
		log.Debug("params published",
			zap.String("source", param.Source),
			zap.Uint64("seq", param.Seq),
			zap.Int("hr", param.HR))
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.NATS.WaveSubject, err)
	}

	ctx, stop := osSignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("processor running...",
		zap.String("in", cfg.NATS.WaveSubject),
		zap.String("out", cfg.NATS.ParamsSubject))
	<-ctx.Done()
	log.Info("processor stopped")
	return nil
}
