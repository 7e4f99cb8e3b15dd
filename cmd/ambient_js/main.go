//go:build js
// +build js

package main

import (
	"log/slog"
	"os"

	"github.com/gopherjs/gopherjs/js"

	"github.com/cbegin/ambient-go"
	"github.com/cbegin/ambient-go/schedule"
	"github.com/cbegin/ambient-go/webaudio"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctrl, err := ambient.NewController(webaudio.BrowserProvider{},
		ambient.WithScheduler(schedule.Browser{}),
		ambient.WithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	// The settings page drives the music through this object.
	js.Global.Set("AmbientPiano", map[string]interface{}{
		"setEnabled": func(on bool) {
			ctrl.SetEnabled(on)
		},
		"isEnabled": func() bool {
			return ctrl.Enabled()
		},
		"teardown": func() {
			ctrl.Teardown()
		},
	})

	js.Global.Call("addEventListener", "beforeunload", func() {
		ctrl.Teardown()
	})

	select {}
}
