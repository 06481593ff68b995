package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlecs/internal/scene"
)

// Scenario defines a deterministic simulation test.
// Entities are seeded into a fresh store, frames are ticked with fixed
// deltas, and assertions check the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entities is the initial scene, in the same format as scene files.
	Entities []scene.Entity `yaml:"entities"`

	// Frames lists the steps to run in order.
	Frames []FrameStep `yaml:"frames"`

	// Assertions validate the final state.
	// Supported types: final_state, row_count, collision_count
	Assertions []Assertion `yaml:"assertions"`
}

// FrameStep runs Repeat frames of Systems with a fixed Delta.
type FrameStep struct {
	// Systems lists system names in tick order. Empty means the default
	// frame: movement, gravity, collision.
	Systems []string `yaml:"systems,omitempty"`

	// Delta is the tick duration in seconds.
	Delta float64 `yaml:"delta"`

	// Repeat defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`
}

// System names accepted in FrameStep.Systems.
const (
	SystemMovement  = "movement"
	SystemGravity   = "gravity"
	SystemCollision = "collision"
	SystemPrinter   = "printer"
)

// DefaultSystems is the frame the engine runs.
var DefaultSystems = []string{SystemMovement, SystemGravity, SystemCollision}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": Query table and verify expected values
	// - "row_count": Check a table holds exactly Count rows
	// - "collision_count": Check the last collision tick found Count pairs
	Type string `yaml:"type"`

	// Table is the component table name (used by final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Entity selects the row by seeded label (used by final_state).
	Entity string `yaml:"entity,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number (used by row_count, collision_count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState     = "final_state"
	AssertRowCount       = "row_count"
	AssertCollisionCount = "collision_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Scene().Normalize()
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Scene returns the scenario's entities as a scene.
func (s *Scenario) Scene() *scene.Scene {
	return &scene.Scene{Name: s.Name, Entities: s.Entities}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Entities) == 0 {
		return fmt.Errorf("entities list is required and must be non-empty")
	}

	if err := s.Scene().Validate(); err != nil {
		return fmt.Errorf("entities: %w", err)
	}

	if len(s.Frames) == 0 {
		return fmt.Errorf("frames list is required and must be non-empty")
	}

	for i, step := range s.Frames {
		if step.Delta < 0 || math.IsNaN(step.Delta) || math.IsInf(step.Delta, 0) {
			return fmt.Errorf("frames[%d]: delta must be finite and non-negative, got %v", i, step.Delta)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("frames[%d]: repeat must be non-negative", i)
		}
		for _, name := range step.Systems {
			switch name {
			case SystemMovement, SystemGravity, SystemCollision, SystemPrinter:
			default:
				return fmt.Errorf("frames[%d]: unknown system %q", i, name)
			}
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		if a.Entity == "" && len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: entity or where is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for row_count", index)
		}
	case AssertCollisionCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for collision_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
