// Package scene describes the initial contents of the store: which entities
// exist and which components they start with.
//
// Scenes are plain data. They can be written in YAML or CUE (see Load),
// built in code, or taken from Demo. Seed writes a scene into a store
// through the component Builder, so every scene obeys the same rules as
// hand-written setup code.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/sqlecs/internal/component"
)

// KindInvalidScene names scene validation failures.
const KindInvalidScene = "InvalidScene"

// DefaultSize is the graphics width and height used when a scene omits them.
const DefaultSize = 8.0

// Scene is an ordered list of entities. Entities are seeded in order, so
// entity ids follow list order unless pinned.
type Scene struct {
	Name     string   `yaml:"name" json:"name,omitempty"`
	Entities []Entity `yaml:"entities" json:"entities"`
}

// Entity lists the components one entity starts with. Nil pointers are
// absent components.
type Entity struct {
	// Label names the entity in diagnostics and harness assertions.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// ID pins the entity id. The entity row is created with that id before
	// components are attached.
	ID *int64 `yaml:"id,omitempty" json:"id,omitempty"`

	Position *Vec      `yaml:"position,omitempty" json:"position,omitempty"`
	Velocity *Vec      `yaml:"velocity,omitempty" json:"velocity,omitempty"`
	Gravity  *float64  `yaml:"gravity,omitempty" json:"gravity,omitempty"`
	Graphics *Graphics `yaml:"graphics,omitempty" json:"graphics,omitempty"`
}

type Vec struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

type Graphics struct {
	Width  float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Color  string  `yaml:"color,omitempty" json:"color,omitempty"`
}

// Components converts e into the component values the Builder attaches, in
// Position, Velocity, Gravity, Graphics order.
func (e Entity) Components() []component.Component {
	var out []component.Component
	if e.Position != nil {
		out = append(out, component.Position{X: e.Position.X, Y: e.Position.Y})
	}
	if e.Velocity != nil {
		out = append(out, component.Velocity{X: e.Velocity.X, Y: e.Velocity.Y})
	}
	if e.Gravity != nil {
		out = append(out, component.Gravity{Amount: *e.Gravity})
	}
	if e.Graphics != nil {
		out = append(out, component.Graphics{
			Width:  e.Graphics.Width,
			Height: e.Graphics.Height,
			Color:  e.Graphics.Color,
		})
	}
	return out
}

// name returns the label, or "#i" when the entity has none.
func (e Entity) name(i int) string {
	if e.Label != "" {
		return e.Label
	}
	return fmt.Sprintf("#%d", i)
}

// ValidationError reports the first problem found in a scene.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("entity %s: %s: %s", e.Entity, e.Field, e.Message)
}

func (e *ValidationError) Kind() string {
	return KindInvalidScene
}

// IsValidationError returns true if err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks that every entity has at least one component, all
// numbers are finite, graphics sizes are positive, and labels and pinned
// ids are unique.
func (s *Scene) Validate() error {
	labels := make(map[string]bool)
	ids := make(map[int64]bool)

	for i, e := range s.Entities {
		name := e.name(i)
		fail := func(field, msg string) error {
			return &ValidationError{Entity: name, Field: field, Message: msg}
		}

		if len(e.Components()) == 0 {
			return fail("components", "entity has no components")
		}
		if e.Label != "" {
			if labels[e.Label] {
				return fail("label", "duplicate label")
			}
			labels[e.Label] = true
		}
		if e.ID != nil {
			if *e.ID <= 0 {
				return fail("id", fmt.Sprintf("must be positive, got %d", *e.ID))
			}
			if ids[*e.ID] {
				return fail("id", fmt.Sprintf("duplicate id %d", *e.ID))
			}
			ids[*e.ID] = true
		}

		if e.Position != nil && !finite(e.Position.X, e.Position.Y) {
			return fail("position", "non-finite value")
		}
		if e.Velocity != nil && !finite(e.Velocity.X, e.Velocity.Y) {
			return fail("velocity", "non-finite value")
		}
		if e.Gravity != nil && !finite(*e.Gravity) {
			return fail("gravity", "non-finite value")
		}
		if g := e.Graphics; g != nil {
			if !finite(g.Width, g.Height) {
				return fail("graphics", "non-finite size")
			}
			if g.Width <= 0 || g.Height <= 0 {
				return fail("graphics", fmt.Sprintf("size must be positive, got %gx%g", g.Width, g.Height))
			}
		}
	}
	return nil
}

// Labels maps each labelled entity's list index to its label.
func (s *Scene) Labels() map[int]string {
	out := make(map[int]string)
	for i, e := range s.Entities {
		if e.Label != "" {
			out[i] = e.Label
		}
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func ptr[T any](v T) *T { return &v }

// Demo returns the built-in scene: a green platform and two falling blocks.
func Demo() *Scene {
	return &Scene{
		Name: "demo",
		Entities: []Entity{
			{
				Label:    "platform",
				Position: &Vec{X: 200, Y: 400},
				Graphics: &Graphics{Width: 128, Height: 8, Color: "green"},
			},
			{
				Label:    "red",
				Position: &Vec{X: 100, Y: 100},
				Velocity: &Vec{},
				Gravity:  ptr(100.0),
				Graphics: &Graphics{Width: 32, Height: 32, Color: "red"},
			},
			{
				Label:    "blue",
				Position: &Vec{X: 200, Y: 100},
				Velocity: &Vec{},
				Gravity:  ptr(100.0),
				Graphics: &Graphics{Width: 32, Height: 32, Color: "blue"},
			},
		},
	}
}
