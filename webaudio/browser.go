//go:build js
// +build js

package webaudio

import (
	"fmt"

	"github.com/gopherjs/gopherjs/js"
)

// BrowserProvider creates contexts backed by the page's Web Audio API.
type BrowserProvider struct{}

func (BrowserProvider) NewContext() (ctx Context, err error) {
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil, ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("%w: %v", ErrUnavailable, r)
		}
	}()
	return &jsContext{obj: ctor.New()}, nil
}

type jsContext struct {
	obj    *js.Object
	closed bool
}

// jsNode exposes the underlying Web Audio object for connections.
type jsNode interface {
	Node
	object() *js.Object
}

// call invokes a method and turns a thrown JavaScript exception into err.
func call(obj *js.Object, method string, args ...interface{}) (res *js.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webaudio: %s: %v", method, r)
		}
	}()
	return obj.Call(method, args...), nil
}

func (c *jsContext) CurrentTime() float64 {
	return c.obj.Get("currentTime").Float()
}

func (c *jsContext) CreateOscillator() (OscillatorNode, error) {
	if c.closed {
		return nil, ErrClosed
	}
	obj, err := call(c.obj, "createOscillator")
	if err != nil {
		return nil, err
	}
	return &jsOscillator{ctx: c, obj: obj}, nil
}

func (c *jsContext) CreateGain() (GainNode, error) {
	if c.closed {
		return nil, ErrClosed
	}
	obj, err := call(c.obj, "createGain")
	if err != nil {
		return nil, err
	}
	return &jsGain{ctx: c, obj: obj}, nil
}

func (c *jsContext) Destination() Node {
	return &jsDestination{ctx: c, obj: c.obj.Get("destination")}
}

func (c *jsContext) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	_, err := call(c.obj, "close")
	return err
}

func (c *jsContext) connect(src *js.Object, dst Node) error {
	if c.closed {
		return ErrClosed
	}
	n, ok := dst.(jsNode)
	if !ok {
		return fmt.Errorf("%w: %T is not a browser node", ErrInvalidConnection, dst)
	}
	if _, err := call(src, "connect", n.object()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnection, err)
	}
	return nil
}

type jsDestination struct {
	ctx *jsContext
	obj *js.Object
}

func (d *jsDestination) object() *js.Object { return d.obj }

func (d *jsDestination) Connect(Node) error {
	return fmt.Errorf("%w: destination has no output", ErrInvalidConnection)
}

type jsGain struct {
	ctx *jsContext
	obj *js.Object
}

func (n *jsGain) object() *js.Object { return n.obj }

func (n *jsGain) Connect(dst Node) error { return n.ctx.connect(n.obj, dst) }

func (n *jsGain) Gain() AudioParam { return &jsParam{ctx: n.ctx, obj: n.obj.Get("gain")} }

type jsOscillator struct {
	ctx *jsContext
	obj *js.Object
}

func (o *jsOscillator) Connect(dst Node) error { return o.ctx.connect(o.obj, dst) }

func (o *jsOscillator) SetType(t OscillatorType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: oscillator type %q", ErrInvalidValue, t)
	}
	o.obj.Set("type", string(t))
	return nil
}

func (o *jsOscillator) Frequency() AudioParam {
	return &jsParam{ctx: o.ctx, obj: o.obj.Get("frequency")}
}

func (o *jsOscillator) Start(at float64) error {
	if o.ctx.closed {
		return ErrClosed
	}
	_, err := call(o.obj, "start", at)
	return err
}

func (o *jsOscillator) Stop(at float64) error {
	if o.ctx.closed {
		return ErrClosed
	}
	_, err := call(o.obj, "stop", at)
	return err
}

type jsParam struct {
	ctx *jsContext
	obj *js.Object
}

func (p *jsParam) automate(method string, value, at float64) error {
	if p.ctx.closed {
		return ErrClosed
	}
	if _, err := call(p.obj, method, value, at); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func (p *jsParam) SetValueAtTime(value, at float64) error {
	return p.automate("setValueAtTime", value, at)
}

func (p *jsParam) LinearRampToValueAtTime(value, at float64) error {
	return p.automate("linearRampToValueAtTime", value, at)
}

func (p *jsParam) ExponentialRampToValueAtTime(value, at float64) error {
	if value == 0 {
		return fmt.Errorf("%w: exponential ramp to zero", ErrInvalidValue)
	}
	return p.automate("exponentialRampToValueAtTime", value, at)
}
