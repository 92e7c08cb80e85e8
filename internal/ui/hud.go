// Package ui draws the diagnostic overlay on top of a finished frame.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

type Layout struct {
	PanelX int
	PanelY int
	PanelW int
	PanelH int
	TextX  int
	TextY  int // top of the text line
	Border int
}

// ComputeLayout places a one-line panel in the top-left corner of a w by h
// surface. The panel never exceeds the surface.
func ComputeLayout(line string, w, h int, theme Theme, scale float32) Layout {
	if scale <= 0 {
		scale = 1
	}

	dp := func(v int) int { return int(float32(v) * scale) }

	face := basicfont.Face7x13
	margin := dp(theme.MarginDp)
	pad := dp(theme.PaddingDp)
	border := dp(theme.BorderDp)
	if theme.BorderDp > 0 && border < 1 {
		border = 1
	}

	panelW := len(line)*face.Advance + pad*2
	panelH := face.Height + pad*2
	if maxW := w - margin*2; panelW > maxW {
		panelW = maxW
	}
	if maxH := h - margin*2; panelH > maxH {
		panelH = maxH
	}
	if panelW < 0 {
		panelW = 0
	}
	if panelH < 0 {
		panelH = 0
	}

	return Layout{
		PanelX: margin,
		PanelY: margin,
		PanelW: panelW,
		PanelH: panelH,
		TextX:  margin + pad,
		TextY:  margin + pad,
		Border: border,
	}
}

// HUD draws a one-line panel. It owns its font face.
type HUD struct {
	Theme Theme
	face  *text.GoXFace
}

func NewHUD(theme Theme) *HUD {
	return &HUD{Theme: theme, face: text.NewGoXFace(basicfont.Face7x13)}
}

func (h *HUD) Draw(screen *ebiten.Image, line string, scale float32) Layout {
	b := screen.Bounds()
	layout := ComputeLayout(line, b.Dx(), b.Dy(), h.Theme, scale)
	if layout.PanelW == 0 || layout.PanelH == 0 {
		return layout
	}

	x, y := float32(layout.PanelX), float32(layout.PanelY)
	pw, ph := float32(layout.PanelW), float32(layout.PanelH)
	vector.FillRect(screen, x, y, pw, ph, h.Theme.Panel, false)
	if layout.Border > 0 {
		vector.StrokeRect(screen, x, y, pw, ph, float32(layout.Border), h.Theme.Border, false)
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(layout.TextX), float64(layout.TextY))
	op.ColorScale.ScaleWithColor(h.Theme.Text)
	text.Draw(screen, line, h.face, op)
	return layout
}
