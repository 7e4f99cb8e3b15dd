//go:build js
// +build js

package schedule

import (
	"time"

	"github.com/gopherjs/gopherjs/js"
)

// Browser schedules callbacks with the page's setTimeout and setInterval.
// Everything runs on the JavaScript event loop.
type Browser struct{}

func (Browser) AfterFunc(d time.Duration, f func()) Task {
	if d < 0 {
		d = 0
	}
	t := &browserTask{clear: "clearTimeout"}
	t.id = js.Global.Call("setTimeout", func() {
		t.done = true
		f()
	}, d.Milliseconds())
	return t
}

func (Browser) Every(d time.Duration, f func()) Task {
	if d <= 0 {
		panic("schedule: non-positive interval for Every")
	}
	t := &browserTask{clear: "clearInterval"}
	t.id = js.Global.Call("setInterval", f, d.Milliseconds())
	return t
}

type browserTask struct {
	id    *js.Object
	clear string
	done  bool
}

func (t *browserTask) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	js.Global.Call(t.clear, t.id)
	return true
}
