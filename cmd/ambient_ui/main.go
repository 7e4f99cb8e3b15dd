package main

import (
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/ambient-go"
	"github.com/cbegin/ambient-go/webaudio"
)

const (
	windowW      = 640
	windowH      = 360
	uiSampleRate = 48000

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	scopeLen = 4096
)

var (
	bgColor       = color.RGBA{192, 192, 192, 255}
	panelColor    = color.RGBA{192, 192, 192, 255}
	borderColor   = color.RGBA{128, 128, 128, 255}
	bevelLight    = color.RGBA{255, 255, 255, 255}
	bevelDarker   = color.RGBA{64, 64, 64, 255}
	sunkenBgColor = color.RGBA{24, 24, 32, 255}
	checkColor    = color.RGBA{0, 0, 128, 255}
	traceColor    = color.RGBA{120, 220, 140, 255}
)

// scope keeps the most recent mono output for drawing.
type scope struct {
	mu       sync.Mutex
	ring     []float32
	writePos int
}

func newScope() *scope {
	return &scope{ring: make([]float32, scopeLen)}
}

// Tap is called from the audio thread.
func (s *scope) Tap(samples []float32) {
	s.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		s.ring[s.writePos] = (samples[i] + samples[i+1]) * 0.5
		s.writePos = (s.writePos + 1) % scopeLen
	}
	s.mu.Unlock()
}

func (s *scope) Snapshot(n int) []float32 {
	n = min(n, scopeLen)
	out := make([]float32, n)
	s.mu.Lock()
	start := (s.writePos - n + scopeLen) % scopeLen
	for i := range out {
		out[i] = s.ring[(start+i)%scopeLen]
	}
	s.mu.Unlock()
	return out
}

type uiLayout struct {
	toggle image.Rectangle
	scope  image.Rectangle
}

type game struct {
	ctrl      *ambient.Controller
	scope     *scope
	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame() (*game, error) {
	sc := newScope()
	provider := webaudio.NewDeviceProvider(uiSampleRate, webaudio.WithSampleTap(sc.Tap))
	ctrl, err := ambient.NewController(provider)
	if err != nil {
		return nil, err
	}
	return &game{
		ctrl:      ctrl,
		scope:     sc,
		textCache: make(map[string]*ebiten.Image, 16),
		viewW:     windowW,
		viewH:     windowH,
	}, nil
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.toggle()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if pointInRect(mx, my, g.layoutRects().toggle) {
			g.toggle()
		}
	}
	return nil
}

func (g *game) toggle() {
	g.ctrl.SetEnabled(!g.ctrl.Enabled())
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()
	g.drawCheckbox(screen, l.toggle, "Ambient music", g.ctrl.Enabled())
	g.drawScope(screen, l.scope)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *game) Close() { g.ctrl.Teardown() }

func (g *game) layoutRects() uiLayout {
	const pad = 16
	toggle := image.Rect(pad, pad, g.viewW-pad, pad+lineH+16)
	return uiLayout{
		toggle: toggle,
		scope:  image.Rect(pad, toggle.Max.Y+pad, g.viewW-pad, g.viewH-pad),
	}
}

func (g *game) drawCheckbox(screen *ebiten.Image, rect image.Rectangle, label string, checked bool) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), panelColor)
	drawBorder(screen, rect)
	box := image.Rect(rect.Min.X+8, rect.Min.Y+(rect.Dy()-lineH)/2, rect.Min.X+8+lineH, rect.Min.Y+(rect.Dy()+lineH)/2)
	ebitenutil.DrawRect(screen, float64(box.Min.X), float64(box.Min.Y), float64(box.Dx()), float64(box.Dy()), bevelLight)
	drawSunkenBorder(screen, box)
	if checked {
		inset := box.Inset(6)
		ebitenutil.DrawRect(screen, float64(inset.Min.X), float64(inset.Min.Y), float64(inset.Dx()), float64(inset.Dy()), checkColor)
	}
	g.drawText(screen, label, box.Max.X+charW, rect.Min.Y+(rect.Dy()-lineH)/2)
}

func (g *game) drawScope(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), sunkenBgColor)
	drawSunkenBorder(screen, rect)
	inner := rect.Inset(4)
	if inner.Dx() < 2 || inner.Dy() < 2 {
		return
	}
	samples := g.scope.Snapshot(inner.Dx() * 4)
	mid := float64(inner.Min.Y + inner.Dy()/2)
	// The melody peaks near 0.1, so scale it up to be visible.
	amp := float64(inner.Dy()) * 2
	step := float64(len(samples)) / float64(inner.Dx())
	prevY := mid
	for x := 0; x < inner.Dx(); x++ {
		y := mid - float64(samples[int(float64(x)*step)])*amp
		y = clamp(y, float64(inner.Min.Y), float64(inner.Max.Y-1))
		top, bottom := min(prevY, y), max(prevY, y)
		ebitenutil.DrawRect(screen, float64(inner.Min.X+x), top, 1, max(1, bottom-top), traceColor)
		prevY = y
	}
}

// drawBorder draws a raised bevel.
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken bevel.
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	img := g.textCache[msg]
	if img == nil {
		img = ebiten.NewImage(max(1, len([]rune(msg))*7), 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		g.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, op)
}

func clamp(v, minV, maxV float64) float64 {
	return max(minV, min(maxV, v))
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

func main() {
	g, err := newGame()
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("ambient piano")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
