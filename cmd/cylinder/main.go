package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"GPU_cylinder_mesh/config"
	"GPU_cylinder_mesh/inspect"
	"GPU_cylinder_mesh/model"
	"GPU_cylinder_mesh/preview"
	"GPU_cylinder_mesh/renderer"
	"GPU_cylinder_mesh/stl"
	vm "GPU_cylinder_mesh/vector_math"

	"github.com/veandco/go-sdl2/sdl"
)

const PROGRAM_NAME = "Cylinder mesh"
const ENTITY_NAME = "cylinder"

// radius and length change by this factor per key press
const SHAPE_STEP = 1.1

var palette = []vm.Vector{
	vm.NewColor(1, 1, 0, 1),
	vm.NewColor(0, 1, 1, 1),
	vm.NewColor(1, 0, 1, 1),
	vm.NewColor(1, 0, 0, 1),
	vm.NewColor(0, 1, 0, 1),
	vm.NewColor(0, 0, 1, 1),
	vm.NewColor(1, 1, 1, 1),
}

var (
	configPath = flag.String("config", "", "YAML file with cylinder and window settings")
	stlPath    = flag.String("stl", "", "write the tessellated cylinder to this binary STL file")
	check      = flag.Bool("check", false, "compare the mesh against the ideal cylinder and exit")
	headless   = flag.Bool("headless", false, "render a single frame into memory instead of opening a window")
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Printf("Starting %s", PROGRAM_NAME)
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

// app holds what the key handlers change between frames.
type app struct {
	cfg      config.Config
	cylinder *model.Cylinder
	paletteA int
	paletteB int
	angle    float32
	paused   bool
}

func newApp(cfg config.Config, params model.CylinderParams) *app {
	return &app{cfg: cfg, cylinder: model.NewCylinder(ENTITY_NAME, params), paletteB: 1}
}

// spin is the tumbling speed in degrees per second, the configured one unless paused.
func (a *app) spin() float32 {
	if a.paused {
		return 0
	}
	return a.cfg.Window.Spin
}

func (a *app) onIteration(event sdl.Event, w *preview.Window) {
	ev, ok := event.(*sdl.KeyboardEvent)
	if !ok || ev.Type != sdl.KEYUP {
		return
	}
	p := a.cylinder.Params()
	switch ev.Keysym.Sym {
	case sdl.K_1:
		// swap the gradient direction
		a.cylinder.SetColors(p.ColorTo, p.ColorFrom)
	case sdl.K_2:
		a.paletteA = (a.paletteA + 1) % len(palette)
		a.cylinder.SetColors(palette[a.paletteA], p.ColorTo)
	case sdl.K_3:
		a.paletteB = (a.paletteB + 1) % len(palette)
		a.cylinder.SetColors(p.ColorFrom, palette[a.paletteB])
	case sdl.K_w:
		a.setShape(p.Length*SHAPE_STEP, p.Radius)
	case sdl.K_s:
		a.setShape(p.Length/SHAPE_STEP, p.Radius)
	case sdl.K_d:
		a.setShape(p.Length, p.Radius*SHAPE_STEP)
	case sdl.K_a:
		a.setShape(p.Length, p.Radius/SHAPE_STEP)
	case sdl.K_SPACE:
		a.paused = !a.paused
	}
}

func (a *app) setShape(length float32, radius float32) {
	if err := a.cylinder.SetShape(length, radius); err != nil {
		log.Printf("Keeping shape: %v", err)
	}
}

func (a *app) onDraw(scene *renderer.Scene) preview.DrawHandler {
	last := time.Duration(0)
	return func(elapsed time.Duration, w *preview.Window) error {
		a.angle += a.spin() * float32((elapsed - last).Seconds())
		last = elapsed
		p := a.cylinder.Params()
		w.Ctx.FrameCylinder(p.Length, p.Radius)
		w.Ctx.SetModel(a.angle, p.Length/2)
		return scene.RenderFrame(1)
	}
}

func run() error {
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	if *check {
		r, err := inspect.Check(params, float64(cfg.Tolerance))
		if err != nil {
			return err
		}
		fmt.Println(r)
		return nil
	}

	if *stlPath != "" {
		mesh, err := model.BuildCylinder(params)
		if err != nil {
			return err
		}
		header := fmt.Sprintf("cylinder l=%g r=%g %dx%d", params.Length, params.Radius, params.Meridians, params.Parallels)
		if err := stl.WriteFile(*stlPath, mesh, header); err != nil {
			return err
		}
	}

	a := newApp(cfg, params)

	if *headless {
		rec := renderer.NewRecorder()
		scene := renderer.NewScene(rec)
		if err := scene.Add(a.cylinder); err != nil {
			return err
		}
		defer scene.Clear()
		if err := scene.RenderFrame(1); err != nil {
			return err
		}
		for _, d := range rec.Draws {
			log.Printf("Recorded draw in pass %d with %d indices", d.Pass, d.Call.IndexCount)
		}
		return nil
	}

	w, err := preview.NewWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height, cfg.Window.Fov)
	if err != nil {
		return err
	}
	defer w.Destroy()
	scene := renderer.NewScene(w.Ctx)
	if err := scene.Add(a.cylinder); err != nil {
		return err
	}
	defer scene.Clear()
	return w.Loop(a.onIteration, a.onDraw(scene))
}

func main() {
	// SDL wants to be driven from the main thread
	runtime.LockOSThread()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
