package webaudio

import (
	"fmt"

	intaudio "github.com/cbegin/ambient-go/internal/audio"
)

// DeviceProvider hands out native graphs that play through the system audio
// device.
type DeviceProvider struct {
	sampleRate int
	opts       []GraphOption
}

func NewDeviceProvider(sampleRate int, opts ...GraphOption) *DeviceProvider {
	return &DeviceProvider{sampleRate: sampleRate, opts: opts}
}

func (p *DeviceProvider) NewContext() (Context, error) {
	g, err := NewGraph(p.sampleRate, p.opts...)
	if err != nil {
		return nil, err
	}
	pl, err := intaudio.NewPlayer(p.sampleRate, g)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	pl.Play()
	return &deviceContext{Graph: g, player: pl}, nil
}

type deviceContext struct {
	*Graph
	player *intaudio.Player
}

// Close closes the graph first so the stream reads EOF, then the device
// stream.
func (c *deviceContext) Close() error {
	if err := c.Graph.Close(); err != nil {
		return err
	}
	return c.player.Stop()
}
