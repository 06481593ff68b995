// Package harness runs deterministic simulation scenarios against a fresh
// in-memory store.
//
// # Scenario Format
//
// Scenarios are YAML files. Entities use the scene file format; frames tick
// a chosen list of systems with a fixed delta instead of wall time.
//
//	name: falling_block
//	description: "Gravity accelerates a block and movement integrates it"
//	entities:
//	  - label: block
//	    position: { x: 0, y: 0 }
//	    velocity: { x: 0, y: 0 }
//	    gravity: 10
//	frames:
//	  - systems: [movement, gravity]
//	    delta: 1
//	    repeat: 2
//	assertions:
//	  - type: final_state
//	    table: position
//	    entity: block
//	    expect: { y: 10 }
//
// # Assertion Types
//
//   - final_state: Selects one component row by entity label or where
//     clause and compares a subset of its columns
//   - row_count: Checks the number of rows in a table
//   - collision_count: Checks the pairs found by the last collision tick
//
// # Determinism
//
// Frame deltas come from the scenario, entity ids come from seeding order,
// and every run uses its own database, so traces are stable enough for
// golden comparison (see RunWithGolden).
package harness
