// Package vectortarget draws frames straight onto an ebiten screen with the
// ebiten vector package.
package vectortarget

import (
	"errors"
	"image"
	"image/color"

	"sketches/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var ErrNoScreen = errors.New("no screen bound")

// kappa places cubic control points so four segments approximate a quarter
// ellipse each.
const kappa = 0.5522847498307936

type Target struct {
	screen    *ebiten.Image
	dst       *ebiten.Image
	antialias bool
	inFrame   bool

	path vector.Path
}

func New(antialias bool) *Target {
	return &Target{antialias: antialias}
}

// Bind sets the image drawn by the next frame. ebiten hands out a new
// screen image on every Draw call.
func (t *Target) Bind(screen *ebiten.Image) {
	t.screen = screen
	t.dst = screen
}

func (t *Target) BeginFrame() error {
	if t.screen == nil {
		return ErrNoScreen
	}
	t.inFrame = true
	t.dst = t.screen
	return nil
}

func (t *Target) Clear(c color.Color) {
	t.screen.Fill(c)
}

// SetClip narrows drawing to r. Sub-images keep the parent's coordinates.
func (t *Target) SetClip(r image.Rectangle) {
	t.dst = t.screen.SubImage(r).(*ebiten.Image)
}

func (t *Target) ResetClip() {
	t.dst = t.screen
}

func (t *Target) FillCircle(cx, cy, r float32, c color.Color) {
	vector.FillCircle(t.dst, cx, cy, r, c, t.antialias)
}

func (t *Target) StrokeCircle(cx, cy, r, width float32, c color.Color) {
	vector.StrokeCircle(t.dst, cx, cy, r, width, c, t.antialias)
}

func (t *Target) FillEllipse(cx, cy, rx, ry float32, c color.Color) {
	t.path.Reset()
	ellipsePath(&t.path, cx, cy, rx, ry)
	op := &vector.DrawPathOptions{AntiAlias: t.antialias}
	op.ColorScale.ScaleWithColor(c)
	vector.FillPath(t.dst, &t.path, nil, op)
}

func ellipsePath(p *vector.Path, cx, cy, rx, ry float32) {
	ox, oy := rx*kappa, ry*kappa
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
}

func (t *Target) EndFrame() error {
	if !t.inFrame {
		return render.ErrFrameState
	}
	t.inFrame = false
	t.dst = t.screen
	return nil
}

// Present is a no-op: ebiten swaps the screen once Draw returns.
func (t *Target) Present() error {
	return nil
}
