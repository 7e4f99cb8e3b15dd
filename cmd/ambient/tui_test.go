package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/ambient-go"
	"github.com/cbegin/ambient-go/schedule"
	"github.com/cbegin/ambient-go/webaudio"
)

func newTestModel(t *testing.T) (model, *ambient.Controller) {
	t.Helper()
	provider := webaudio.ProviderFunc(func() (webaudio.Context, error) {
		return webaudio.NewGraph(8000)
	})
	ctrl, err := ambient.NewController(provider, ambient.WithScheduler(schedule.NewFake()))
	require.NoError(t, err)
	return newModel(ctrl), ctrl
}

func press(m model, key string) (model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestModelToggles(t *testing.T) {
	m, ctrl := newTestModel(t)
	assert.Contains(t, m.View(), "Ambient music: off")

	m, _ = press(m, " ")
	assert.True(t, ctrl.Enabled())
	assert.Equal(t, ambient.Running, ctrl.State())
	assert.Contains(t, m.View(), "Ambient music: on")

	m, _ = press(m, "m")
	assert.False(t, ctrl.Enabled())
	assert.Equal(t, ambient.Idle, ctrl.State())
}

func TestModelQuitTearsDown(t *testing.T) {
	m, ctrl := newTestModel(t)
	m, _ = press(m, " ")

	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, ambient.Idle, ctrl.State())
	assert.Empty(t, m.View())

	ctrl.SetEnabled(true)
	assert.Equal(t, ambient.Idle, ctrl.State())
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	assert.NoError(t, err)
	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	assert.NoError(t, loadDotEnv(t.TempDir()+"/missing.env"))
	assert.NoError(t, loadDotEnv(""))
}
