package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

func Connect(url, name string, log *zap.Logger) (*nats.Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
}

// publisher lo satisface *nats.Conn.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publica el frame binario y los vitales en JSON.
type NATSSink struct {
	pub           publisher
	waveSubject   string
	vitalsSubject string
	source        uuid.UUID
}

func NewNATSSink(pub publisher, waveSubject, vitalsSubject string, source uuid.UUID) *NATSSink {
	return &NATSSink{
		pub:           pub,
		waveSubject:   waveSubject,
		vitalsSubject: vitalsSubject,
		source:        source,
	}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Publish(_ context.Context, b *signal.Bundle) error {
	if err := s.pub.Publish(s.waveSubject, EncodeFrame(b, s.source)); err != nil {
		return fmt.Errorf("publish %s: %w", s.waveSubject, err)
	}

	data, err := Marshal(NewVitalsMsg(b, s.source))
	if err != nil {
		return fmt.Errorf("marshal vitals: %w", err)
	}
	if err := s.pub.Publish(s.vitalsSubject, data); err != nil {
		return fmt.Errorf("publish %s: %w", s.vitalsSubject, err)
	}
	return nil
}

// SubscribeRates entrega cada cambio de frecuencia válido a fn. Los mensajes
// mal formados se descartan.
func SubscribeRates(nc *nats.Conn, subject string, log *zap.Logger, fn func(signal.RateUpdate)) (*nats.Subscription, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		u, err := DecodeRateUpdate(msg.Data)
		if err != nil {
			log.Warn("discarding rate update", zap.String("subject", subject), zap.Error(err))
			return
		}
		fn(u)
	})
}
