package config

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownSketch = errors.New("unknown sketch")
	ErrInvalidConfig = errors.New("invalid config")
)

//go:embed sketches.toml
var defaults []byte

type Backend string

const (
	BackendVector      Backend = "vector"
	BackendFrameBuffer Backend = "framebuffer"
	BackendGG          Backend = "gg"
)

type RGBA [4]float32

type CircleConfig struct {
	Count    int        `toml:"count"`
	Region   [4]float32 `toml:"region"`
	Centered bool       `toml:"centered"`
	Radius   [2]float32 `toml:"radius"`
	Alpha    float32    `toml:"alpha"`
}

type EllipseConfig struct {
	Radius [2]float32 `toml:"radius"`
	Fill   RGBA       `toml:"fill"`
}

type StyleConfig struct {
	Background   RGBA    `toml:"background"`
	Stroke       RGBA    `toml:"stroke"`
	StrokeWidth  float32 `toml:"stroke_width"`
	ClipToRegion bool    `toml:"clip_to_region"`
}

// Sketch is one program's settings. SceneFile, when set, replays a saved
// scene instead of generating one.
type Sketch struct {
	Key        string         `toml:"-"`
	Name       string         `toml:"name"`
	Width      int            `toml:"width"`
	Height     int            `toml:"height"`
	Fullscreen bool           `toml:"fullscreen"`
	Backend    Backend        `toml:"backend"`
	HUD        bool           `toml:"hud"`
	Seed       uint64         `toml:"seed"`
	SceneFile  string         `toml:"scene_file"`
	Circles    *CircleConfig  `toml:"circles"`
	Ellipse    *EllipseConfig `toml:"ellipse"`
	Style      StyleConfig    `toml:"style"`
}

// Parse decodes a sketch table keyed by program name.
func Parse(data []byte) (map[string]Sketch, error) {
	var raw map[string]Sketch
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("decode sketches: %w", err)
	}
	for key, s := range raw {
		s.Key = key
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sketch %q: %w", key, err)
		}
		raw[key] = s
	}
	return raw, nil
}

// Load returns the embedded defaults for one program.
func Load(key string) (Sketch, error) {
	all, err := Parse(defaults)
	if err != nil {
		return Sketch{}, err
	}
	s, ok := all[key]
	if !ok {
		return Sketch{}, fmt.Errorf("%w: %q", ErrUnknownSketch, key)
	}
	return s, nil
}

// Keys lists the embedded program keys in order.
func Keys() []string {
	all, err := Parse(defaults)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Sketch) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidConfig)
	}
	if !s.Fullscreen && (s.Width <= 0 || s.Height <= 0) {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, s.Width, s.Height)
	}
	switch s.Backend {
	case BackendVector, BackendFrameBuffer, BackendGG:
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalidConfig, s.Backend)
	}
	if (s.Circles == nil) == (s.Ellipse == nil) {
		return fmt.Errorf("%w: exactly one of circles or ellipse is required", ErrInvalidConfig)
	}
	if s.SceneFile != "" && s.Circles == nil {
		return fmt.Errorf("%w: scene_file needs a circles table", ErrInvalidConfig)
	}
	if c := s.Circles; c != nil {
		if c.Count < 0 {
			return fmt.Errorf("%w: circle count %d", ErrInvalidConfig, c.Count)
		}
		if c.Radius[0] <= 0 || c.Radius[0] >= c.Radius[1] {
			return fmt.Errorf("%w: radius range %v", ErrInvalidConfig, c.Radius)
		}
		if c.Region[0] >= c.Region[2] || c.Region[1] >= c.Region[3] {
			return fmt.Errorf("%w: region %v", ErrInvalidConfig, c.Region)
		}
		if c.Alpha < 0 || c.Alpha > 1 {
			return fmt.Errorf("%w: alpha %v", ErrInvalidConfig, c.Alpha)
		}
	}
	if e := s.Ellipse; e != nil {
		if e.Radius[0] <= 0 || e.Radius[1] <= 0 {
			return fmt.Errorf("%w: ellipse radius %v", ErrInvalidConfig, e.Radius)
		}
		if !e.Fill.valid() {
			return fmt.Errorf("%w: ellipse fill %v", ErrInvalidConfig, e.Fill)
		}
	}
	if !s.Style.Background.valid() || !s.Style.Stroke.valid() {
		return fmt.Errorf("%w: style colors", ErrInvalidConfig)
	}
	if s.Style.StrokeWidth < 0 {
		return fmt.Errorf("%w: stroke width %v", ErrInvalidConfig, s.Style.StrokeWidth)
	}
	return nil
}

func (c RGBA) valid() bool {
	for _, v := range c {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
