package harness

import "github.com/roach88/sqlecs/internal/system"

// EntityState is one entity as seen at the end of a frame. Nil pointers
// are missing components.
type EntityState struct {
	ID       int64       `json:"id"`
	Label    string      `json:"label,omitempty"`
	Position *[2]float64 `json:"position,omitempty"`
	Velocity *[2]float64 `json:"velocity,omitempty"`
}

// FrameTrace records one executed frame.
type FrameTrace struct {
	// Frame is 1-based across all steps of the scenario.
	Frame   int      `json:"frame"`
	Delta   float64  `json:"delta"`
	Systems []string `json:"systems"`

	// Collisions is the number of pairs found this frame, or -1 when the
	// collision system did not run.
	Collisions int `json:"collisions"`

	Entities []EntityState `json:"entities"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace has one entry per executed frame, in order.
	Trace []FrameTrace `json:"trace"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// Entities maps labels to the entity ids they were seeded with.
	Entities map[string]int64 `json:"entities,omitempty"`

	// LastCollisions holds the pairs found by the most recent collision tick.
	LastCollisions []system.Pair `json:"-"`

	// CollisionRan is true once any frame ran the collision system.
	CollisionRan bool `json:"-"`

	// Diagnostics is everything the printer system wrote.
	Diagnostics string `json:"diagnostics,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []FrameTrace{},
		Errors:   []string{},
		Entities: make(map[string]int64),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddFrame appends a frame to the trace.
func (r *Result) AddFrame(f FrameTrace) {
	r.Trace = append(r.Trace, f)
}
