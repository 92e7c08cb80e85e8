package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sketches/internal/render"
	"sketches/internal/render/ggtarget"
	"sketches/pkg/scenefile"

	"github.com/atotto/clipboard"
	"github.com/sqweek/dialog"
	imgclipboard "golang.design/x/clipboard"
)

var (
	ErrNoFileSelected = errors.New("no file selected")
	ErrNoScene        = errors.New("sketch has no circle scene")
)

// Clipboard is the system clipboard as the hotkeys use it.
type Clipboard interface {
	WriteText(s string) error
	WriteImage(png []byte) error
}

// SaveDialog asks for a destination path. An empty path or
// dialog.ErrCancelled means the user backed out.
type SaveDialog func(defaultName string) (string, error)

type systemClipboard struct {
	imageReady bool
	imageErr   error
}

func (c *systemClipboard) WriteText(s string) error {
	return clipboard.WriteAll(s)
}

func (c *systemClipboard) WriteImage(png []byte) error {
	if !c.imageReady {
		c.imageReady = true
		c.imageErr = imgclipboard.Init()
	}
	if c.imageErr != nil {
		return fmt.Errorf("init image clipboard: %w", c.imageErr)
	}
	imgclipboard.Write(imgclipboard.FmtImage, png)
	return nil
}

// nativeSaveDialog filters on the default name's extension.
func nativeSaveDialog(defaultName string) (string, error) {
	b := dialog.File().SetStartFile(defaultName)
	switch filepath.Ext(defaultName) {
	case scenefile.Ext:
		b = b.Title("Export scene").Filter("Scene files", strings.TrimPrefix(scenefile.Ext, "."))
	default:
		b = b.Title("Save snapshot").Filter("PNG images", "png")
	}
	return b.Save()
}

const (
	keyCopyDiagnostic = "C"
	keyCopyImage      = "I"
	keySaveSnapshot   = "S"
	keyToggleHUD      = "H"
	keyExportScene    = "E"
)

func (a *App) handleKey(key string) {
	switch key {
	case keyCopyDiagnostic:
		a.copyDiagnostic()
	case keyCopyImage:
		a.copyImage()
	case keySaveSnapshot:
		path, err := a.saveSnapshot()
		switch {
		case errors.Is(err, dialog.ErrCancelled), errors.Is(err, ErrNoFileSelected):
			a.log.Info("snapshot cancelled")
		case err != nil:
			a.log.Error("save snapshot", "err", err)
		default:
			a.log.Info("snapshot saved", "path", path)
		}
	case keyToggleHUD:
		a.showHUD = !a.showHUD
	case keyExportScene:
		path, err := a.exportScene()
		switch {
		case errors.Is(err, dialog.ErrCancelled), errors.Is(err, ErrNoFileSelected):
			a.log.Info("scene export cancelled")
		case err != nil:
			a.log.Error("export scene", "err", err)
		default:
			a.log.Info("scene exported", "path", path, "encrypted", a.scenePassword != "")
		}
	}
}

func (a *App) copyDiagnostic() {
	line := a.diagnostic
	if line == "" {
		line = a.cfg.Name
	}
	if err := a.clipboard.WriteText(line); err != nil {
		a.log.Warn("copy diagnostic", "err", err)
		return
	}
	a.log.Info("diagnostic copied", "text", line)
}

func (a *App) copyImage() {
	var buf bytes.Buffer
	if err := a.Snapshot(&buf); err != nil {
		a.log.Error("render snapshot", "err", err)
		return
	}
	if err := a.clipboard.WriteImage(buf.Bytes()); err != nil {
		a.log.Warn("copy snapshot", "err", err)
		return
	}
	a.log.Info("snapshot copied", "bytes", buf.Len())
}

// Snapshot renders the current scene offscreen through gg and writes it as PNG.
func (a *App) Snapshot(w io.Writer) error {
	width, height := a.window.SizePx()
	tg := ggtarget.New(width, height)
	defer tg.Close()
	if err := render.Draw(tg, a.painter, a.style); err != nil {
		return err
	}
	return tg.EncodePNG(w)
}

// SnapshotName is the suggested file name for a snapshot.
func (a *App) SnapshotName() string {
	return a.baseName() + ".png"
}

// SceneName is the suggested file name for an exported scene.
func (a *App) SceneName() string {
	return a.baseName() + scenefile.Ext
}

func (a *App) baseName() string {
	base := a.cfg.Key
	if base == "" {
		base = strings.ToLower(strings.ReplaceAll(a.cfg.Name, " ", "-"))
	}
	if fp := a.fingerprint(); fp != "" {
		return base + "-" + fp
	}
	return base
}

func (a *App) askPath(defaultName, ext string) (string, error) {
	path, err := a.saveDialog(defaultName)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrNoFileSelected
	}
	path = filepath.Clean(path)
	if filepath.Ext(path) == "" {
		path += ext
	}
	return path, nil
}

func (a *App) exportScene() (string, error) {
	if a.scene == nil {
		return "", ErrNoScene
	}
	path, err := a.askPath(a.SceneName(), scenefile.Ext)
	if err != nil {
		return "", err
	}
	opts := scenefile.SaveOptions{Compression: true, Password: a.scenePassword}
	if err := scenefile.Save(path, a.scene, opts); err != nil {
		return "", fmt.Errorf("save scene: %w", err)
	}
	return path, nil
}

func (a *App) saveSnapshot() (string, error) {
	path, err := a.askPath(a.SnapshotName(), ".png")
	if err != nil {
		return "", err
	}
	if err := a.writeSnapshot(path); err != nil {
		return "", err
	}
	return path, nil
}

func (a *App) writeSnapshot(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close snapshot: %w", cerr)
		}
	}()
	if err := a.Snapshot(f); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
