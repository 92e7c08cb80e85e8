package app

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"time"

	"sketches/internal/clock"
	"sketches/internal/config"
	"sketches/internal/platform"
	"sketches/internal/platform/ebitenwin"
	"sketches/internal/render"
	"sketches/internal/render/ggtarget"
	"sketches/internal/render/vectortarget"
	"sketches/internal/scene"
	"sketches/internal/ui"
	"sketches/pkg/scenefile"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
)

type blitter interface {
	Blit(screen *ebiten.Image)
}

type layouter interface {
	Layout(outsideWidth, outsideHeight int)
}

type Option func(*App)

func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithPlatform replaces the ebiten window backend.
func WithPlatform(p platform.Platform) Option {
	return func(a *App) { a.platform = p }
}

func WithClockSource(now func() time.Time) Option {
	return func(a *App) { a.clockSource = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(a *App) { a.rng = rng }
}

func WithClipboard(c Clipboard) Option {
	return func(a *App) { a.clipboard = c }
}

func WithSaveDialog(d SaveDialog) Option {
	return func(a *App) { a.saveDialog = d }
}

// WithScenePassword encrypts exported scenes and decrypts a replayed one.
func WithScenePassword(password string) Option {
	return func(a *App) { a.scenePassword = password }
}

// App hosts one sketch. It owns the window, the scene, the clock and the
// draw target for the lifetime of the process.
type App struct {
	cfg      config.Sketch
	log      *slog.Logger
	platform platform.Platform

	clockSource func() time.Time
	rng         *rand.Rand
	clipboard   Clipboard
	saveDialog  SaveDialog

	scenePassword string

	window platform.Window
	input  *platform.Input
	clock  *clock.Clock

	scene   *scene.Scene
	painter render.Painter
	style   render.Style

	target render.Target
	vec    *vectortarget.Target
	fb     *render.FrameBuffer
	ggt    *ggtarget.Target

	timing     clock.Timing
	diagnostic string
	showHUD    bool
	hud        *ui.HUD
	frames     uint64
	err        error
	closed     bool
}

func New(cfg config.Sketch, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, showHUD: cfg.HUD, hud: ui.NewHUD(ui.DefaultTheme())}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.platform == nil {
		a.platform = ebitenwin.New()
	}
	if a.clipboard == nil {
		a.clipboard = &systemClipboard{}
	}
	if a.saveDialog == nil {
		a.saveDialog = nativeSaveDialog
	}
	if a.rng == nil {
		a.rng = scene.NewRand(cfg.Seed)
	}
	gg.SetLogger(a.log.With("component", "gg"))

	win, err := a.platform.CreateWindow(platform.WindowConfig{
		Title:      cfg.Name,
		WidthPx:    cfg.Width,
		HeightPx:   cfg.Height,
		Fullscreen: cfg.Fullscreen,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s window: %w", a.platform.Name(), err)
	}
	a.window = win

	var clockOpts []clock.Option
	if a.clockSource != nil {
		clockOpts = append(clockOpts, clock.WithSource(a.clockSource))
	}
	a.clock = clock.New(cfg.Name, clockOpts...)

	a.input = platform.NewInput()
	a.input.OnKey = a.handleKey
	a.input.OnResize = a.handleResize

	if err := a.buildScene(); err != nil {
		win.Close()
		return nil, err
	}
	a.buildTarget()

	w, h := win.SizePx()
	a.log.Info("sketch ready",
		"sketch", cfg.Name,
		"backend", string(cfg.Backend),
		"platform", a.platform.Name(),
		"size", fmt.Sprintf("%dx%d", w, h),
		"circles", a.scene.Len(),
		"fingerprint", a.fingerprint(),
	)
	return a, nil
}

func (a *App) buildScene() error {
	w, h := a.window.SizePx()
	st := a.cfg.Style
	a.style = render.Style{
		Background:  rgba(st.Background),
		StrokeWidth: st.StrokeWidth,
	}

	if c := a.cfg.Circles; c != nil {
		bounds := scene.Rect{MinX: c.Region[0], MinY: c.Region[1], MaxX: c.Region[2], MaxY: c.Region[3]}
		if c.Centered {
			bounds = scene.Centered(float32(w), float32(h), bounds.Width(), bounds.Height())
		}
		s, err := a.loadOrGenerate(scene.Params{
			Count:     c.Count,
			Bounds:    bounds,
			RadiusMin: c.Radius[0],
			RadiusMax: c.Radius[1],
			Alpha:     c.Alpha,
			Stroke:    rgba(st.Stroke),
		})
		if err != nil {
			return err
		}
		a.scene = s
		if st.ClipToRegion {
			a.style.Clip = image.Rect(int(bounds.MinX), int(bounds.MinY), int(bounds.MaxX), int(bounds.MaxY))
		}
		a.painter = render.Circles(s, a.style)
		return nil
	}

	e := a.cfg.Ellipse
	a.painter = render.Ellipse(scene.Ellipse{
		X:       float32(w) / 2,
		Y:       float32(h) / 2,
		RadiusX: e.Radius[0],
		RadiusY: e.Radius[1],
		Fill:    rgba(e.Fill),
	})
	return nil
}

func (a *App) loadOrGenerate(p scene.Params) (*scene.Scene, error) {
	if a.cfg.SceneFile == "" {
		s, err := scene.Generate(p, a.rng)
		if err != nil {
			return nil, fmt.Errorf("generate scene: %w", err)
		}
		return s, nil
	}
	s, err := scenefile.Load(a.cfg.SceneFile, scenefile.LoadOptions{Password: a.scenePassword})
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", a.cfg.SceneFile, err)
	}
	a.log.Info("scene replayed", "path", a.cfg.SceneFile, "circles", s.Len())
	return s, nil
}

func (a *App) buildTarget() {
	w, h := a.window.SizePx()
	switch a.cfg.Backend {
	case config.BackendFrameBuffer:
		a.fb = render.NewFrameBuffer(w, h)
		a.fb.SetPresenter(a.window)
		a.target = a.fb
	case config.BackendGG:
		a.ggt = ggtarget.New(w, h)
		a.ggt.SetPresenter(a.window)
		a.target = a.ggt
	default:
		a.vec = vectortarget.New(true)
		a.target = a.vec
	}
}

func (a *App) fingerprint() string {
	if a.scene == nil || a.scene.Len() == 0 {
		return ""
	}
	return a.scene.Fingerprint()
}

// Run hands control to ebiten until the window closes or Escape is pressed.
func (a *App) Run() error {
	defer a.Close()
	ebiten.SetVsyncEnabled(false)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	if err := ebiten.RunGame(a); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	if a.err != nil {
		return a.err
	}
	if a.poll() == platform.Quit {
		return ebiten.Termination
	}
	a.tick()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.err != nil {
		return
	}
	if a.vec != nil {
		a.vec.Bind(screen)
	}
	if err := a.renderFrame(); err != nil {
		a.err = err
		return
	}
	if b, ok := a.window.(blitter); ok && a.vec == nil {
		b.Blit(screen)
	}
	if a.showHUD {
		a.drawHUD(screen)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if l, ok := a.window.(layouter); ok {
		l.Layout(outsideWidth, outsideHeight)
	}
	if a.cfg.Fullscreen {
		return outsideWidth, outsideHeight
	}
	return a.cfg.Width, a.cfg.Height
}

// Step runs one loop iteration without ebiten: poll, tick, render.
func (a *App) Step() (platform.Status, error) {
	if a.err != nil {
		return platform.Quit, a.err
	}
	if a.poll() == platform.Quit {
		return platform.Quit, nil
	}
	a.tick()
	if err := a.renderFrame(); err != nil {
		a.err = err
		return platform.Quit, err
	}
	return platform.Continue, nil
}

// RunFrames steps until quit or n frames, whichever comes first. n <= 0
// means no frame limit.
func (a *App) RunFrames(n int) error {
	defer a.Close()
	for i := 0; n <= 0 || i < n; i++ {
		status, err := a.Step()
		if err != nil {
			return err
		}
		if status == platform.Quit {
			return nil
		}
	}
	return nil
}

func (a *App) poll() platform.Status {
	return a.input.Poll(a.window.PollEvents())
}

func (a *App) tick() {
	timing, report, due := a.clock.Tick()
	a.timing = timing
	if !due {
		return
	}
	a.diagnostic = report.Title
	a.window.SetTitle(report.Title)
	a.log.Debug("frame stats", "fps", report.FPS, "frame_ms", report.FrameMs)
}

func (a *App) renderFrame() error {
	a.frames++
	return render.Draw(a.target, a.painter, a.style)
}

func (a *App) handleResize(w, h int) {
	a.log.Info("surface resized", "width", w, "height", h)
	if a.fb != nil {
		a.fb.Resize(w, h)
	}
	if a.ggt != nil {
		if err := a.ggt.Resize(w, h); err != nil {
			a.err = fmt.Errorf("%w: %w", render.ErrFatal, err)
		}
	}
}

func (a *App) drawHUD(screen *ebiten.Image) {
	line := a.diagnostic
	if line == "" {
		line = a.cfg.Name
	}
	a.hud.Draw(screen, line, a.window.Scale())
}

// Close releases the target and window. It is safe to call twice.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.ggt != nil {
		if err := a.ggt.Close(); err != nil {
			a.log.Warn("release gg context", "err", err)
		}
	}
	a.window.Close()
	a.log.Info("sketch stopped", "sketch", a.cfg.Name, "frames", a.frames)
}

func (a *App) Err() error              { return a.err }
func (a *App) Frames() uint64          { return a.frames }
func (a *App) Timing() clock.Timing    { return a.timing }
func (a *App) Diagnostic() string      { return a.diagnostic }
func (a *App) HUDVisible() bool        { return a.showHUD }
func (a *App) Scene() *scene.Scene     { return a.scene }
func (a *App) Style() render.Style     { return a.style }
func (a *App) Window() platform.Window { return a.window }

func rgba(c config.RGBA) scene.Color {
	return scene.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}
