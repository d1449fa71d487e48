package preview

import (
	"fmt"
	"log"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Window owns the SDL window and renderer the preview Context is rasterized into. On tear down the renderer,
// the window and SDL itself are shut down.
type Window struct {
	sdlVersion string

	Win       *sdl.Window
	Ren       *sdl.Renderer
	Ctx       *Context
	Minimized bool
	Close     bool

	Background sdl.Color
}

func NewWindow(title string, w int32, h int32, fovDeg float32) (*Window, error) {
	window := &Window{
		sdlVersion: fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH),
		Background: sdl.Color{R: 24, G: 24, B: 32, A: 255},
	}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %w", err)
	}
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		w,
		h,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create SDL window: %w", err)
	}
	ren, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		win.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create SDL renderer: %w", err)
	}
	if err := ren.SetDrawBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		log.Printf("Blending unavailable, alpha is ignored: %v", err)
	}
	window.Win = win
	window.Ren = ren
	window.Ctx = NewContext(w, h, fovDeg)
	window.syncViewport()
	log.Printf("Generated SDL preview window - SDL: %s", window.sdlVersion)
	return window, nil
}

func (w *Window) Destroy() {
	if err := w.Ren.Destroy(); err != nil {
		log.Printf("Failed to destroy SDL renderer: %v", err)
	}
	if err := w.Win.Destroy(); err != nil {
		log.Printf("Failed to destroy SDL window: %v", err)
	}
	sdl.Quit()
}

// syncViewport uses the drawable size, which differs from the window size on high DPI displays.
func (w *Window) syncViewport() {
	width, height, err := w.Ren.GetOutputSize()
	if err != nil || width <= 0 || height <= 0 {
		return
	}
	w.Ctx.SetViewport(width, height)
}

type IterationHandler func(sdl.Event, *Window)

// DrawHandler records the frame into w.Ctx, usually by rendering a scene.
type DrawHandler func(time.Duration, *Window) error

// Loop runs the event loop until the window is closed or a DrawHandler fails. Frames are skipped while the
// window is minimized, ESC closes the window.
func (w *Window) Loop(ih IterationHandler, dh DrawHandler) error {
	t0 := time.Now()
	frames := 0
	var event sdl.Event
	w.Close = false
	for !w.Close {
		for event = sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				w.Close = true
			case *sdl.WindowEvent:
				if ev.Event == sdl.WINDOWEVENT_RESIZED || ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					w.syncViewport()
				} else if ev.Event == sdl.WINDOWEVENT_MINIMIZED {
					w.Minimized = true
				} else if ev.Event == sdl.WINDOWEVENT_RESTORED {
					w.Minimized = false
				}
			case *sdl.KeyboardEvent:
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					w.Close = true
				}
			}
			if ih != nil {
				ih(event, w)
			}
		}
		if w.Minimized {
			// Sleep until new events change w.Minimized
			sdl.WaitEvent()
			continue
		}
		w.Ctx.ResetFrame()
		if err := dh(time.Since(t0), w); err != nil {
			return err
		}
		if err := w.drawFrame(); err != nil {
			return err
		}
		frames++
	}
	dt := time.Since(t0)
	log.Printf("Elapsed: %v, rough avg fps: %v fps", dt, float64(frames)/dt.Seconds())
	return nil
}

func (w *Window) drawFrame() error {
	bg := w.Background
	if err := w.Ren.SetDrawColor(bg.R, bg.G, bg.B, bg.A); err != nil {
		return err
	}
	if err := w.Ren.Clear(); err != nil {
		return err
	}
	verts, indices := w.Ctx.Geometry()
	if len(verts) > 0 {
		if err := w.Ren.RenderGeometry(nil, verts, indices); err != nil {
			return fmt.Errorf("failed to render geometry: %w", err)
		}
	}
	w.Ren.Present()
	return nil
}
