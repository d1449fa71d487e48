package renderer

import (
	"fmt"
	"log"
)

// Scene is the active render set. An entity only becomes part of it once its Initialize step succeeded, a
// failing entity is logged and never drawn.
//
// A Scene and its entities belong to the goroutine that renders them. Nothing in here is synchronized.
type Scene struct {
	ctx      Context
	entities []Entity
}

func NewScene(ctx Context) *Scene {
	return &Scene{ctx: ctx}
}

// Add initializes e against the scene's context and adds it to the render set.
func (s *Scene) Add(e Entity) error {
	if _, err := s.Find(e.Name()); err == nil {
		return fmt.Errorf("entity '%s' already in scene", e.Name())
	}
	if err := e.Initialize(s.ctx); err != nil {
		log.Printf("Failed to initialize entity '%s', not adding it to the scene: %v", e.Name(), err)
		return fmt.Errorf("initialize entity '%s': %w", e.Name(), err)
	}
	s.entities = append(s.entities, e)
	log.Printf("Added entity '%s' to scene (%d entities)", e.Name(), len(s.entities))
	return nil
}

func (s *Scene) Find(name string) (Entity, error) {
	for i, e := range s.entities {
		if e.Name() == name {
			return s.entities[i], nil
		}
	}
	return nil, fmt.Errorf("entity '%s' not found", name)
}

// Remove drops the entity with the given name and releases its buffers.
// Comparison is done naively by name until more sophisticated methods are required.
func (s *Scene) Remove(name string) error {
	for i, e := range s.entities {
		if e.Name() == name {
			e.Release()
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entity '%s' not found", name)
}

func (s *Scene) Clear() {
	for _, e := range s.entities {
		e.Release()
	}
	s.entities = nil
}

func (s *Scene) Len() int {
	return len(s.entities)
}

// RenderFrame runs passes render passes over every entity, pass by pass. The first failing draw stops the frame.
func (s *Scene) RenderFrame(passes int) error {
	for pass := 0; pass < passes; pass++ {
		for _, e := range s.entities {
			if err := e.RenderPass(pass); err != nil {
				return fmt.Errorf("render pass %d of '%s': %w", pass, e.Name(), err)
			}
		}
	}
	return nil
}
