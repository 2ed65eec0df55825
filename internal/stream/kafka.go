package stream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink escribe un mensaje por tick. La clave es la fuente, así todos los
// bloques de una corrida caen en la misma partición y en orden.
type KafkaSink struct {
	w      messageWriter
	source uuid.UUID
}

func NewKafkaSink(brokers []string, topic string, source uuid.UUID) *KafkaSink {
	return &KafkaSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		source: source,
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, b *signal.Bundle) error {
	vitals, err := Marshal(NewVitalsMsg(b, s.source))
	if err != nil {
		return fmt.Errorf("marshal vitals: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(s.source.String()),
		Value: EncodeFrame(b, s.source),
		Headers: []kafka.Header{
			{Key: "seq", Value: []byte(strconv.FormatUint(b.Seq, 10))},
			{Key: "vitals", Value: vitals},
		},
	}
	if err := s.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}
