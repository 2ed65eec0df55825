package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

// Frame binario (little endian):
//
//	magic "VWF1" | seq u64 | start f64 | fs f64 | n u32 | source [16]byte
//	seguido de 5×n float32 en orden ecg, pleth, resp, art, co2.
const (
	frameMagic  = "VWF1"
	headerSize  = 4 + 8 + 8 + 8 + 4 + 16
	numChannels = 5
)

var (
	ErrShortFrame = errors.New("stream: short frame")
	ErrBadMagic   = errors.New("stream: bad frame magic")
)

// Frame es un bloque decodificado.
type Frame struct {
	Seq        uint64
	Start      float64
	SampleRate float64
	Source     uuid.UUID
	Channels   [numChannels][]float32
}

// Channel devuelve las muestras de c.
func (f *Frame) Channel(c signal.Channel) []float32 {
	if c < 0 || int(c) >= numChannels {
		return nil
	}
	return f.Channels[c]
}

// Float64 copia el canal a float64 para análisis.
func (f *Frame) Float64(c signal.Channel) []float64 {
	in := f.Channel(c)
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func EncodeFrame(b *signal.Bundle, source uuid.UUID) []byte {
	n := len(b.Waveforms.ECG)
	out := make([]byte, headerSize+numChannels*n*4)

	copy(out, frameMagic)
	binary.LittleEndian.PutUint64(out[4:], b.Seq)
	binary.LittleEndian.PutUint64(out[12:], math.Float64bits(b.Start))
	binary.LittleEndian.PutUint64(out[20:], math.Float64bits(b.SampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(n))
	copy(out[32:48], source[:])

	off := headerSize
	for _, c := range signal.Channels() {
		for _, v := range b.Waveforms.Channel(c) {
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(float32(v)))
			off += 4
		}
	}
	return out
}

func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	if string(data[:4]) != frameMagic {
		return nil, ErrBadMagic
	}

	f := &Frame{
		Seq:        binary.LittleEndian.Uint64(data[4:]),
		Start:      math.Float64frombits(binary.LittleEndian.Uint64(data[12:])),
		SampleRate: math.Float64frombits(binary.LittleEndian.Uint64(data[20:])),
	}
	n := int(binary.LittleEndian.Uint32(data[28:]))
	copy(f.Source[:], data[32:48])

	if want := headerSize + numChannels*n*4; len(data) != want {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrShortFrame, len(data), want)
	}

	off := headerSize
	for c := range f.Channels {
		samples := make([]float32, n)
		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		f.Channels[c] = samples
	}
	return f, nil
}
