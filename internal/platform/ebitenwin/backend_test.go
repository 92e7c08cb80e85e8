package ebitenwin

import (
	"testing"

	"sketches/internal/platform"
)

func TestResizeEvent(t *testing.T) {
	cases := []struct {
		name             string
		curW, curH       int
		layoutW, layoutH int
		want             bool
	}{
		{"not laid out", 800, 800, 0, 0, false},
		{"half laid out", 800, 800, 640, 0, false},
		{"unchanged", 800, 800, 800, 800, false},
		{"width changed", 800, 800, 1024, 800, true},
		{"fullscreen", 800, 800, 1920, 1080, true},
	}
	for _, tc := range cases {
		ev, ok := resizeEvent(tc.curW, tc.curH, tc.layoutW, tc.layoutH)
		if ok != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, ok)
		}
		if !ok {
			continue
		}
		if ev.Type != platform.EventResize || ev.Width != tc.layoutW || ev.Height != tc.layoutH {
			t.Fatalf("%s: unexpected event %+v", tc.name, ev)
		}
	}
}

func TestLayoutResizesOnce(t *testing.T) {
	w := &Window{w: 800, h: 800}
	w.Layout(1024, 768)
	ev, ok := resizeEvent(w.w, w.h, w.layoutW, w.layoutH)
	if !ok || ev.Width != 1024 {
		t.Fatalf("expected resize to 1024x768, got %+v", ev)
	}
	w.w, w.h = ev.Width, ev.Height
	if _, ok := resizeEvent(w.w, w.h, w.layoutW, w.layoutH); ok {
		t.Fatalf("expected no second resize for the same layout")
	}
}
