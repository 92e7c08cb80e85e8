package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"sketches/internal/scene"
)

// ErrFatal marks a back-end failure. Callers stop rendering on it; there is
// no retry and no degraded frame.
var ErrFatal = errors.New("fatal render failure")

// Target is a drawing surface with batched frame semantics. Draw calls do not
// return errors: a back-end keeps the first failure and reports it from
// EndFrame.
type Target interface {
	BeginFrame() error
	Clear(c color.Color)
	SetClip(r image.Rectangle)
	ResetClip()
	FillCircle(cx, cy, r float32, c color.Color)
	StrokeCircle(cx, cy, r, width float32, c color.Color)
	FillEllipse(cx, cy, rx, ry float32, c color.Color)
	EndFrame() error
	Present() error
}

type Style struct {
	Background  color.Color
	StrokeWidth float32
	// Clip limits shape drawing. The zero rectangle disables clipping.
	Clip image.Rectangle
}

func DefaultStyle() Style {
	return Style{Background: color.White, StrokeWidth: 3}
}

type Painter interface {
	Paint(t Target)
}

type circlePainter struct {
	scene *scene.Scene
	width float32
}

// Circles fills then outlines every circle of s in order.
func Circles(s *scene.Scene, st Style) Painter {
	return circlePainter{scene: s, width: st.StrokeWidth}
}

func (p circlePainter) Paint(t Target) {
	for _, c := range p.scene.All() {
		t.FillCircle(c.X, c.Y, c.Radius, c.Fill)
		t.StrokeCircle(c.X, c.Y, c.Radius, p.width, c.Stroke)
	}
}

type ellipsePainter struct {
	e scene.Ellipse
}

func Ellipse(e scene.Ellipse) Painter {
	return ellipsePainter{e: e}
}

func (p ellipsePainter) Paint(t Target) {
	t.FillEllipse(p.e.X, p.e.Y, p.e.RadiusX, p.e.RadiusY, p.e.Fill)
}

// Draw runs one full frame on t: begin, clear, paint (clipped when st.Clip is
// set), end and present.
func Draw(t Target, p Painter, st Style) error {
	if err := t.BeginFrame(); err != nil {
		return fatal("begin frame", err)
	}
	bg := st.Background
	if bg == nil {
		bg = color.White
	}
	t.Clear(bg)
	clipped := !st.Clip.Empty()
	if clipped {
		t.SetClip(st.Clip)
	}
	p.Paint(t)
	if clipped {
		t.ResetClip()
	}
	if err := t.EndFrame(); err != nil {
		return fatal("end frame", err)
	}
	if err := t.Present(); err != nil {
		return fatal("present", err)
	}
	return nil
}

func RenderFrame(s *scene.Scene, t Target, st Style) error {
	return Draw(t, Circles(s, st), st)
}

func fatal(op string, err error) error {
	if errors.Is(err, ErrFatal) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrFatal, op, err)
}
