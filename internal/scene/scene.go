package scene

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"iter"
	"math"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidCount  = errors.New("invalid circle count")
	ErrInvalidCircle = errors.New("invalid circle")
)

// MaxExtent bounds circle coordinates and radii accepted from outside Generate.
const MaxExtent = 1 << 20

// Color holds straight (non-premultiplied) channels in [0,1].
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = channel16(c.A)
	r = channel16(c.R) * a / 0xffff
	g = channel16(c.G) * a / 0xffff
	b = channel16(c.B) * a / 0xffff
	return r, g, b, a
}

// NRGBA returns the 8-bit straight-alpha form used by pixel buffers.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: channel8(c.R), G: channel8(c.G), B: channel8(c.B), A: channel8(c.A)}
}

func channel16(v float32) uint32 {
	return uint32(clamp01(v)*0xffff + 0.5)
}

func channel8(v float32) uint8 {
	return uint8(clamp01(v)*0xff + 0.5)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type Circle struct {
	X      float32
	Y      float32
	Radius float32
	Fill   Color
	Stroke Color
}

// Validate reports whether c can be drawn: finite coordinates within
// MaxExtent, a radius in (0, MaxExtent] and every channel in [0,1].
func (c Circle) Validate() error {
	for _, v := range [...]float32{c.X, c.Y} {
		if !finite(v) || v < -MaxExtent || v > MaxExtent {
			return fmt.Errorf("%w: center (%g, %g)", ErrInvalidCircle, c.X, c.Y)
		}
	}
	if !finite(c.Radius) || c.Radius <= 0 || c.Radius > MaxExtent {
		return fmt.Errorf("%w: radius %g", ErrInvalidCircle, c.Radius)
	}
	if !c.Fill.valid() || !c.Stroke.valid() {
		return fmt.Errorf("%w: color fill %+v stroke %+v", ErrInvalidCircle, c.Fill, c.Stroke)
	}
	return nil
}

func (c Color) valid() bool {
	for _, v := range [...]float32{c.R, c.G, c.B, c.A} {
		if !(v >= 0 && v <= 1) {
			return false
		}
	}
	return true
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type Ellipse struct {
	X       float32
	Y       float32
	RadiusX float32
	RadiusY float32
	Fill    Color
}

type Rect struct {
	MinX float32
	MinY float32
	MaxX float32
	MaxY float32
}

// Region returns the rectangle [0,w) x [0,h).
func Region(w, h float32) Rect {
	return Rect{MaxX: w, MaxY: h}
}

// Centered returns a w x h rectangle centered inside a screenW x screenH area.
func Centered(screenW, screenH, w, h float32) Rect {
	x := screenW/2 - w/2
	y := screenH/2 - h/2
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

func (r Rect) Width() float32  { return r.MaxX - r.MinX }
func (r Rect) Height() float32 { return r.MaxY - r.MinY }

type Params struct {
	Count     int
	Bounds    Rect
	RadiusMin float32
	RadiusMax float32
	Alpha     float32
	Stroke    Color
}

func (p Params) validate() error {
	if p.Count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, p.Count)
	}
	if p.RadiusMin <= 0 || p.RadiusMin >= p.RadiusMax {
		return fmt.Errorf("%w: radius [%g, %g)", ErrInvalidRange, p.RadiusMin, p.RadiusMax)
	}
	if p.Bounds.MinX >= p.Bounds.MaxX || p.Bounds.MinY >= p.Bounds.MaxY {
		return fmt.Errorf("%w: bounds %+v", ErrInvalidRange, p.Bounds)
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return fmt.Errorf("%w: alpha %g", ErrInvalidRange, p.Alpha)
	}
	return nil
}

// Scene is a fixed, ordered set of circles. Index order is draw order.
type Scene struct {
	circles []Circle
}

// Generate builds p.Count circles with centers, radii and fill colors drawn
// uniformly from rng. Centers are bounded by p.Bounds but radii are not, so
// circles near the edge extend past the region.
func Generate(p Params, rng *rand.Rand) (*Scene, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(0)
	}
	circles := make([]Circle, p.Count)
	for i := range circles {
		x := UniformIn(rng, p.Bounds.MinX, p.Bounds.MaxX)
		y := UniformIn(rng, p.Bounds.MinY, p.Bounds.MaxY)
		r := UniformIn(rng, p.RadiusMin, p.RadiusMax)
		circles[i] = Circle{
			X:      x,
			Y:      y,
			Radius: r,
			Fill:   Color{R: Uniform(rng), G: Uniform(rng), B: Uniform(rng), A: p.Alpha},
			Stroke: p.Stroke,
		}
	}
	return &Scene{circles: circles}, nil
}

func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.circles)
}

// FromCircles wraps an existing circle list, such as one read back from a
// scene file. The slice is copied and every circle must pass Validate.
func FromCircles(circles []Circle) (*Scene, error) {
	for i, c := range circles {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("circle %d: %w", i, err)
		}
	}
	return &Scene{circles: append([]Circle(nil), circles...)}, nil
}

func (s *Scene) At(i int) Circle {
	return s.circles[i]
}

func (s *Scene) All() iter.Seq2[int, Circle] {
	return func(yield func(int, Circle) bool) {
		if s == nil {
			return
		}
		for i, c := range s.circles {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Fingerprint is a short digest of the circle data. Scenes generated from the
// same seed and params share a fingerprint.
func (s *Scene) Fingerprint() string {
	h, _ := blake2b.New(8, nil)
	var buf [4]byte
	put := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	for _, c := range s.All() {
		put(c.X)
		put(c.Y)
		put(c.Radius)
		put(c.Fill.R)
		put(c.Fill.G)
		put(c.Fill.B)
		put(c.Fill.A)
	}
	return hex.EncodeToString(h.Sum(nil))
}
