package clock

import (
	"fmt"
	"time"
)

// ReportInterval is the minimum wall time between two FPS reports.
const ReportInterval = 1.0

type Timing struct {
	Time        float64
	Delta       float32
	Frames      uint32
	WindowStart float64
}

type Report struct {
	FPS     float64
	FrameMs float64
	Title   string
}

type Option func(*Clock)

// WithSource replaces time.Now. The source must be monotonic.
func WithSource(now func() time.Time) Option {
	return func(c *Clock) { c.source = now }
}

// Clock measures frame time from an epoch fixed at the first reading.
type Clock struct {
	name    string
	source  func() time.Time
	epoch   time.Time
	started bool

	ticked      bool
	last        float64
	frames      uint32
	windowStart float64
}

func New(name string, opts ...Option) *Clock {
	c := &Clock{name: name, source: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) Name() string { return c.name }

// Now returns seconds elapsed since the first call.
func (c *Clock) Now() float64 {
	t := c.source()
	if !c.started {
		c.epoch = t
		c.started = true
	}
	d := t.Sub(c.epoch)
	if d < 0 {
		d = 0
	}
	return d.Seconds()
}

// Tick advances the clock by one frame. The returned bool reports whether a
// new FPS report is due; at most one report is produced per ReportInterval.
func (c *Clock) Tick() (Timing, Report, bool) {
	now := c.Now()
	if !c.ticked {
		c.ticked = true
		c.last = now
		c.windowStart = now
	}

	delta := now - c.last
	if delta < 0 {
		delta = 0
	}
	c.last = now

	var (
		report Report
		due    bool
	)
	if elapsed := now - c.windowStart; elapsed >= ReportInterval {
		fps := float64(c.frames) / elapsed
		ms := 0.0
		if fps > 0 {
			ms = 1000.0 / fps
		}
		report = Report{FPS: fps, FrameMs: ms, Title: FormatTitle(fps, ms, c.name)}
		due = true
		c.windowStart = now
		c.frames = 0
	}
	c.frames++

	return Timing{Time: now, Delta: float32(delta), Frames: c.frames, WindowStart: c.windowStart}, report, due
}

// FormatTitle renders the title-bar diagnostic.
func FormatTitle(fps, ms float64, name string) string {
	return fmt.Sprintf("[%.1f fps  %.3f ms] %s", fps, ms, name)
}
