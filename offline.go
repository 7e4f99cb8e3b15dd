package ambient

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/cbegin/ambient-go/schedule"
	"github.com/cbegin/ambient-go/webaudio"
)

// RenderSamples runs an engine on a native graph for the given length of
// virtual time and returns interleaved stereo samples. Timers fire on the
// nearest sample, so the output is identical on every run.
func RenderSamples(m Melody, sampleRate int, seconds float64, opts ...webaudio.GraphOption) ([]float32, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, errors.New("ambient: negative render length")
	}
	g, err := webaudio.NewGraph(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	clock := schedule.NewFake()
	engine := NewEngine(g, clock, m, nil)
	engine.Start()

	sr := float64(sampleRate)
	frameAt := func(at float64) int64 { return int64(math.Round(at * sr)) }
	total := int64(seconds * sr)
	out := make([]float32, total*2)
	var rendered int64
	for rendered < total {
		target := total
		next, ok := clock.Next()
		if ok {
			if f := frameAt(next.Seconds()); f < target {
				target = f
			}
		}
		if target > rendered {
			g.Process(out[2*rendered : 2*target])
			rendered = target
		}
		if ok && frameAt(next.Seconds()) <= rendered {
			clock.Advance(next - clock.Now())
		}
	}
	if err := engine.Stop(); err != nil {
		return nil, err
	}
	return out, nil
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
