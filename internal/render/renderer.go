// Package render projects the store into a pixel buffer once per frame and
// hands it to a Window.
package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/roach88/sqlecs/internal/store"
)

// KindPresent names window failures.
const KindPresent = "PresentError"

var (
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Black = color.RGBA{0x00, 0x00, 0x00, 0xff}
	Gray  = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

// ColorFor maps a graphics color name to its fill. Unknown names are gray.
func ColorFor(name string) color.RGBA {
	switch name {
	case "red":
		return color.RGBA{0xff, 0x00, 0x00, 0xff}
	case "green":
		return color.RGBA{0x00, 0xff, 0x00, 0xff}
	case "blue":
		return color.RGBA{0x00, 0x00, 0xff, 0xff}
	default:
		return Gray
	}
}

// PresentError is returned when the window rejects a frame.
type PresentError struct {
	Err error
}

func (e *PresentError) Error() string {
	return fmt.Sprintf("%s: %v", KindPresent, e.Err)
}

func (e *PresentError) Unwrap() error { return e.Err }

// Kind returns KindPresent.
func (e *PresentError) Kind() string { return KindPresent }

// IsPresentError returns true if err wraps a *PresentError.
func IsPresentError(err error) bool {
	var pe *PresentError
	return errors.As(err, &pe)
}

const drawablesSQL = `
	SELECT p.x, p.y, g.width, g.height, g.color
	FROM entity e
	JOIN position p ON p.id = e.id
	JOIN graphics g ON g.id = e.id
	ORDER BY e.id`

// Sprite is one row of the render projection.
type Sprite struct {
	X, Y          float64
	Width, Height float64
	Color         string
}

// Renderer owns the canvas and draws every entity with position and
// graphics. The canvas is sized from the window at construction; resizes
// are not handled.
type Renderer struct {
	stmt    *store.Statement
	window  Window
	canvas  *Canvas
	fps     float64
	showFPS bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFPSText toggles the fps overlay.
func WithFPSText(show bool) Option {
	return func(r *Renderer) {
		r.showFPS = show
	}
}

// New prepares the projection query and a canvas matching window.Size().
func New(ctx context.Context, st *store.Store, window Window, opts ...Option) (*Renderer, error) {
	stmt, err := st.Prepare(ctx, drawablesSQL)
	if err != nil {
		return nil, err
	}
	w, h := window.Size()
	r := &Renderer{
		stmt:    stmt,
		window:  window,
		canvas:  NewCanvas(w, h),
		showFPS: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// SetFPS sets the value shown by the fps overlay.
func (r *Renderer) SetFPS(fps float64) {
	r.fps = fps
}

// FPS returns the last value passed to SetFPS.
func (r *Renderer) FPS() float64 {
	return r.fps
}

// Sprites reads the current projection without drawing it.
func (r *Renderer) Sprites(ctx context.Context) (sprites []Sprite, err error) {
	if err := r.stmt.Reset(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			r.stmt.Reset()
		}
	}()

	for {
		state, err := r.stmt.Step(ctx)
		if err != nil {
			return nil, err
		}
		if state == store.StateDone {
			return sprites, nil
		}

		var s Sprite
		if s.X, err = r.stmt.ReadFloat(0); err != nil {
			return nil, err
		}
		if s.Y, err = r.stmt.ReadFloat(1); err != nil {
			return nil, err
		}
		if s.Width, err = r.stmt.ReadFloat(2); err != nil {
			return nil, err
		}
		if s.Height, err = r.stmt.ReadFloat(3); err != nil {
			return nil, err
		}
		if s.Color, err = r.stmt.ReadString(4); err != nil {
			return nil, err
		}
		sprites = append(sprites, s)
	}
}

// Render draws one frame and presents it.
func (r *Renderer) Render(ctx context.Context) error {
	r.canvas.Clear(White)

	sprites, err := r.Sprites(ctx)
	if err != nil {
		return err
	}
	for _, s := range sprites {
		r.canvas.FillRect(s.X-s.Width/2, s.Y-s.Height/2, s.Width, s.Height, ColorFor(s.Color))
	}

	if r.showFPS {
		r.canvas.DrawText(fmt.Sprintf("fps: %.1f", r.fps), 0, 100, Black)
	}

	w, h := r.window.Size()
	if err := r.window.Present(r.canvas.Pixels(), w, h); err != nil {
		return &PresentError{Err: err}
	}
	return nil
}

func (r *Renderer) Close() error {
	return r.stmt.Close()
}
