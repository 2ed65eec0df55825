package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestNATSSinkPublishesFrameAndVitals(t *testing.T) {
	pub := &fakePublisher{}
	src := uuid.New()
	s := NewNATSSink(pub, "monitor.wave", "monitor.vitals", src)

	b := testBundle(t)
	require.NoError(t, s.Publish(context.Background(), b))

	require.Equal(t, []string{"monitor.wave", "monitor.vitals"}, pub.subjects)

	f, err := DecodeFrame(pub.payloads[0])
	require.NoError(t, err)
	assert.Equal(t, b.Seq, f.Seq)

	var v VitalsMsg
	require.NoError(t, Unmarshal(pub.payloads[1], &v))
	assert.Equal(t, 75, v.Vitals.HR)
}

func TestNATSSinkWrapsError(t *testing.T) {
	boom := errors.New("boom")
	s := NewNATSSink(&fakePublisher{err: boom}, "w", "v", uuid.Nil)

	err := s.Publish(context.Background(), testBundle(t))
	assert.ErrorIs(t, err, boom)
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	src := uuid.New()
	s := &KafkaSink{w: w, source: src}

	b := testBundle(t)
	require.NoError(t, s.Publish(context.Background(), b))
	require.NoError(t, s.Close())

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, src.String(), string(msg.Key))
	assert.Equal(t, "seq", msg.Headers[0].Key)
	assert.Equal(t, "1", string(msg.Headers[0].Value))

	f, err := DecodeFrame(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, src, f.Source)
	assert.True(t, w.closed)
}
