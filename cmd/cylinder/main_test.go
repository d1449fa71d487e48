package main

import (
	"testing"

	"GPU_cylinder_mesh/config"

	"github.com/veandco/go-sdl2/sdl"
)

func keyUp(sym sdl.Keycode) sdl.Event {
	return &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sym}}
}

func testApp(t *testing.T, spin float32) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Window.Spin = spin
	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	return newApp(cfg, p)
}

func TestPauseKeepsConfiguredSpin(t *testing.T) {
	a := testApp(t, 90)
	a.onIteration(keyUp(sdl.K_SPACE), nil)
	if a.spin() != 0 {
		t.Errorf("paused spin = %f, want 0", a.spin())
	}
	a.onIteration(keyUp(sdl.K_SPACE), nil)
	if a.spin() != 90 {
		t.Errorf("resumed spin = %f, want the configured 90", a.spin())
	}
}

func TestColorKeys(t *testing.T) {
	a := testApp(t, 0)
	p := a.cylinder.Params()
	a.onIteration(keyUp(sdl.K_1), nil)
	swapped := a.cylinder.Params()
	if swapped.ColorFrom != p.ColorTo || swapped.ColorTo != p.ColorFrom {
		t.Errorf("key 1 should swap the gradient, got %v..%v", swapped.ColorFrom, swapped.ColorTo)
	}
	a.onIteration(keyUp(sdl.K_2), nil)
	if got := a.cylinder.Params().ColorFrom; got != palette[1] {
		t.Errorf("key 2 should pick the next start color, got %v", got)
	}
}

func TestShapeKeys(t *testing.T) {
	a := testApp(t, 0)
	before := a.cylinder.Params()
	a.onIteration(keyUp(sdl.K_w), nil)
	a.onIteration(keyUp(sdl.K_d), nil)
	after := a.cylinder.Params()
	if after.Length <= before.Length || after.Radius <= before.Radius {
		t.Errorf("w and d should grow the cylinder: %+v -> %+v", before, after)
	}
	// key down events are ignored
	a.onIteration(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_1}}, nil)
	if a.cylinder.Params().ColorFrom != after.ColorFrom {
		t.Errorf("only key releases should change the colors")
	}
}
