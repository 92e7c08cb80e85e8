package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"sketches/internal/scene"
)

type op struct {
	kind string
	x, y float32
}

type recorder struct {
	ops      []op
	endErr   error
	presents int
}

func (r *recorder) BeginFrame() error { r.ops = append(r.ops, op{kind: "begin"}); return nil }
func (r *recorder) Clear(color.Color) { r.ops = append(r.ops, op{kind: "clear"}) }
func (r *recorder) SetClip(image.Rectangle) {
	r.ops = append(r.ops, op{kind: "clip"})
}
func (r *recorder) ResetClip() { r.ops = append(r.ops, op{kind: "unclip"}) }
func (r *recorder) FillCircle(cx, cy, _ float32, _ color.Color) {
	r.ops = append(r.ops, op{kind: "fill", x: cx, y: cy})
}
func (r *recorder) StrokeCircle(cx, cy, _, _ float32, _ color.Color) {
	r.ops = append(r.ops, op{kind: "stroke", x: cx, y: cy})
}
func (r *recorder) FillEllipse(cx, cy, _, _ float32, _ color.Color) {
	r.ops = append(r.ops, op{kind: "ellipse", x: cx, y: cy})
}
func (r *recorder) EndFrame() error {
	r.ops = append(r.ops, op{kind: "end"})
	return r.endErr
}
func (r *recorder) Present() error {
	r.presents++
	r.ops = append(r.ops, op{kind: "present"})
	return nil
}

func sketchScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Generate(scene.Params{
		Count:     500,
		Bounds:    scene.Region(800, 800),
		RadiusMin: 20,
		RadiusMax: 120,
		Alpha:     0.2,
		Stroke:    scene.Color{A: 0.125},
	}, scene.NewRand(42))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRenderFrameIssuesOrderedOps(t *testing.T) {
	s := sketchScene(t)
	rec := &recorder{}
	if err := RenderFrame(s, rec, DefaultStyle()); err != nil {
		t.Fatal(err)
	}

	if rec.ops[0].kind != "begin" || rec.ops[1].kind != "clear" {
		t.Fatalf("expected begin, clear; got %v %v", rec.ops[0], rec.ops[1])
	}
	body := rec.ops[2 : len(rec.ops)-2]
	if len(body) != 1000 {
		t.Fatalf("expected 1000 draw ops, got %d", len(body))
	}
	for i := 0; i < 500; i++ {
		c := s.At(i)
		fill, stroke := body[2*i], body[2*i+1]
		if fill.kind != "fill" || stroke.kind != "stroke" {
			t.Fatalf("circle %d: expected fill then stroke, got %s %s", i, fill.kind, stroke.kind)
		}
		if fill.x != c.X || fill.y != c.Y || stroke.x != c.X {
			t.Fatalf("circle %d drawn out of order", i)
		}
	}
	tail := rec.ops[len(rec.ops)-2:]
	if tail[0].kind != "end" || tail[1].kind != "present" {
		t.Fatalf("expected end, present; got %v", tail)
	}
	if rec.presents != 1 {
		t.Fatalf("expected exactly one present, got %d", rec.presents)
	}
}

func TestDrawClipsWhenStyleHasClip(t *testing.T) {
	s := sketchScene(t)
	rec := &recorder{}
	st := DefaultStyle()
	st.Clip = image.Rect(560, 140, 1360, 940)
	if err := RenderFrame(s, rec, st); err != nil {
		t.Fatal(err)
	}
	if rec.ops[2].kind != "clip" {
		t.Fatalf("expected clip after clear, got %s", rec.ops[2].kind)
	}
	if rec.ops[len(rec.ops)-3].kind != "unclip" {
		t.Fatalf("expected unclip before end, got %s", rec.ops[len(rec.ops)-3].kind)
	}
}

func TestDrawWrapsBackendFailureAsFatal(t *testing.T) {
	rec := &recorder{endErr: errors.New("device removed")}
	err := Draw(rec, Ellipse(scene.Ellipse{X: 640, Y: 360, RadiusX: 100, RadiusY: 150}), DefaultStyle())
	if !errors.Is(err, ErrFatal) {
		t.Fatalf("expected ErrFatal, got %v", err)
	}
	if rec.presents != 0 {
		t.Fatalf("expected no present after a failed frame")
	}
}

func TestFrameBufferFillCircleBlends(t *testing.T) {
	fb := NewFrameBuffer(100, 100)
	if err := fb.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	fb.Clear(color.White)
	fb.FillCircle(50, 50, 20, scene.Color{R: 1, A: 0.5})
	if err := fb.EndFrame(); err != nil {
		t.Fatal(err)
	}

	center := fb.Image().RGBAAt(50, 50)
	if center.R != 255 || center.G < 126 || center.G > 129 || center.A != 255 {
		t.Fatalf("expected half red over white at center, got %+v", center)
	}
	corner := fb.Image().RGBAAt(2, 2)
	if corner != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected untouched corner, got %+v", corner)
	}
}

func TestFrameBufferStrokeLeavesCenterUntouched(t *testing.T) {
	fb := NewFrameBuffer(100, 100)
	fb.Clear(color.White)
	fb.StrokeCircle(50, 50, 30, 3, scene.Color{A: 1})

	if got := fb.Image().RGBAAt(50, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected center untouched by stroke, got %+v", got)
	}
	if got := fb.Image().RGBAAt(80, 50); got.R > 10 {
		t.Fatalf("expected ring pixel to be dark, got %+v", got)
	}
}

func TestFrameBufferClip(t *testing.T) {
	fb := NewFrameBuffer(100, 100)
	fb.Clear(color.White)
	fb.SetClip(image.Rect(0, 0, 50, 100))
	fb.FillCircle(50, 50, 40, scene.Color{A: 1})
	fb.ResetClip()

	if got := fb.Image().RGBAAt(30, 50); got.R != 0 {
		t.Fatalf("expected filled pixel inside clip, got %+v", got)
	}
	if got := fb.Image().RGBAAt(70, 50); got.R != 255 {
		t.Fatalf("expected pixel outside clip untouched, got %+v", got)
	}
}

func TestFrameBufferSkipsNonFiniteShapes(t *testing.T) {
	fb := NewFrameBuffer(64, 64)
	fb.Clear(color.White)
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	fb.FillCircle(32, 32, nan, scene.Color{A: 1})
	fb.FillCircle(inf, 32, 10, scene.Color{A: 1})
	fb.StrokeCircle(32, nan, 10, 3, scene.Color{A: 1})
	fb.FillEllipse(32, 32, 10, inf, scene.Color{A: 1})
	if got := fb.Image().RGBAAt(32, 32); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected non-finite shapes to be skipped, got %+v", got)
	}
}

func TestFrameBufferShapesCrossingEdges(t *testing.T) {
	fb := NewFrameBuffer(64, 64)
	fb.Clear(color.White)
	fb.FillCircle(0, 0, 30, scene.Color{A: 1})
	fb.FillCircle(70, 32, 20, scene.Color{A: 1})

	if got := fb.Image().RGBAAt(5, 5); got.R != 0 {
		t.Fatalf("expected corner covered by circle, got %+v", got)
	}
	if got := fb.Image().RGBAAt(63, 32); got.R != 0 {
		t.Fatalf("expected right edge covered, got %+v", got)
	}
	if got := fb.Image().RGBAAt(32, 32); got.R != 255 {
		t.Fatalf("expected middle untouched, got %+v", got)
	}
}

type countingPresenter struct {
	n   int
	err error
}

func (p *countingPresenter) Present(*FrameBuffer) error {
	p.n++
	return p.err
}

func TestFrameBufferPresentsThroughPresenter(t *testing.T) {
	fb := NewFrameBuffer(32, 32)
	p := &countingPresenter{}
	fb.SetPresenter(p)
	if err := RenderFrame(sketchScene(t), fb, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	if p.n != 1 {
		t.Fatalf("expected one present, got %d", p.n)
	}

	p.err = fmt.Errorf("swap chain lost")
	if err := RenderFrame(sketchScene(t), fb, DefaultStyle()); !errors.Is(err, ErrFatal) {
		t.Fatalf("expected ErrFatal, got %v", err)
	}
}

func TestFrameBufferEndWithoutBegin(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	if err := fb.EndFrame(); !errors.Is(err, ErrFrameState) {
		t.Fatalf("expected ErrFrameState, got %v", err)
	}
}

func TestFrameBufferResize(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	fb.Resize(20, 5)
	if fb.W != 20 || fb.H != 5 || len(fb.Pixels) != 20*5*4 {
		t.Fatalf("unexpected size after resize: %dx%d (%d bytes)", fb.W, fb.H, len(fb.Pixels))
	}
	fb.Resize(0, -1)
	if fb.W != 1 || fb.H != 1 {
		t.Fatalf("expected minimum 1x1, got %dx%d", fb.W, fb.H)
	}
}
