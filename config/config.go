package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"GPU_cylinder_mesh/model"
	vm "GPU_cylinder_mesh/vector_math"

	"gopkg.in/yaml.v3"
)

const maxConfigSize = 1024 * 1024

// Cylinder is the YAML form of model.CylinderParams. Colors are lists of 4 floats (r, g, b, a).
type Cylinder struct {
	Length    float32   `yaml:"length"`
	Radius    float32   `yaml:"radius"`
	Meridians int       `yaml:"meridians"`
	Parallels int       `yaml:"parallels"`
	ColorFrom []float32 `yaml:"color_from"`
	ColorTo   []float32 `yaml:"color_to"`
}

type Window struct {
	Title  string  `yaml:"title"`
	Width  int32   `yaml:"width"`
	Height int32   `yaml:"height"`
	Fov    float32 `yaml:"fov"`
	// degrees per second the model tumbles around the X axis, across the cylinder axis. 0 keeps it still
	Spin float32 `yaml:"spin"`
}

type Config struct {
	Cylinder Cylinder `yaml:"cylinder"`
	Window   Window   `yaml:"window"`
	// maximum distance of a vertex from the ideal surface accepted by the -check flag
	Tolerance float32 `yaml:"tolerance"`
}

func Default() Config {
	p := model.DefaultCylinderParams()
	return Config{
		Cylinder: Cylinder{
			Length:    p.Length,
			Radius:    p.Radius,
			Meridians: p.Meridians,
			Parallels: p.Parallels,
			ColorFrom: p.ColorFrom[:],
			ColorTo:   p.ColorTo[:],
		},
		Window: Window{
			Title:  "Cylinder",
			Width:  1024,
			Height: 768,
			Fov:    45,
			Spin:   30,
		},
		Tolerance: 1e-4,
	}
}

// Parse decodes YAML on top of the defaults, so every key is optional.
func Parse(data []byte) (Config, error) {
	c := Default()
	// a color list given in the file replaces the default one, it is never merged with it
	from, to := c.Cylinder.ColorFrom, c.Cylinder.ColorTo
	c.Cylinder.ColorFrom, c.Cylinder.ColorTo = nil, nil
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if c.Cylinder.ColorFrom == nil {
		c.Cylinder.ColorFrom = from
	}
	if c.Cylinder.ColorTo == nil {
		c.Cylinder.ColorTo = to
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return Config{}, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if !(c.Window.Fov > 0 && c.Window.Fov < 180) {
		return Config{}, fmt.Errorf("field of view must be between 0 and 180 degrees, got %g", c.Window.Fov)
	}
	if c.Tolerance < 0 {
		return Config{}, errors.New("tolerance must not be negative")
	}
	return c, nil
}

// Load reads the config file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, err
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config file %s is too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("Loaded config %s", path)
	return c, nil
}

// Params converts the cylinder section and validates it.
func (c Config) Params() (model.CylinderParams, error) {
	from, err := color(c.Cylinder.ColorFrom)
	if err != nil {
		return model.CylinderParams{}, fmt.Errorf("%w: color_from: %v", model.ErrInvalidConfig, err)
	}
	to, err := color(c.Cylinder.ColorTo)
	if err != nil {
		return model.CylinderParams{}, fmt.Errorf("%w: color_to: %v", model.ErrInvalidConfig, err)
	}
	p := model.CylinderParams{
		Length:    c.Cylinder.Length,
		Radius:    c.Cylinder.Radius,
		Meridians: c.Cylinder.Meridians,
		Parallels: c.Cylinder.Parallels,
		ColorFrom: from,
		ColorTo:   to,
	}
	if err := p.Validate(); err != nil {
		return model.CylinderParams{}, err
	}
	return p, nil
}

func color(f []float32) (vm.Vector, error) {
	if len(f) != 4 {
		return vm.Vector{}, fmt.Errorf("need 4 channels, got %d", len(f))
	}
	return vm.FromFloats(f)
}
