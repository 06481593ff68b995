// Package store provides the in-memory SQLite database that holds every
// entity and component of the simulation.
//
// # Schema
//
// The schema is a goose migration embedded from migrations/:
//   - entity(id INTEGER PRIMARY KEY)
//   - position(id, x, y)
//   - velocity(id, x, y)
//   - gravity(id, amount)
//   - graphics(id, width, height, color)
//
// Component tables reference entity(id) but do not make id unique. At most
// one row per (table, entity) is enforced by component.Builder, not here.
//
// # Statements
//
// Systems hold prepared Statements and re-bind them every frame:
//
//	stmt, _ := st.Prepare(ctx, `UPDATE position AS p SET x = p.x + v.x * :delta ...`)
//	stmt.Bind(":delta", 0.016)
//	stmt.Exec(ctx)
//
// Queries are stepped cursor style:
//
//	stmt.Reset()
//	for {
//	    state, err := stmt.Step(ctx)
//	    if err != nil || state == store.StateDone {
//	        break
//	    }
//	    x, _ := stmt.ReadFloat(0)
//	}
//
// # Database Configuration
//
//   - one connection (required for :memory:, and a consequence for cursors)
//   - foreign_keys=ON: component rows must reference an existing entity
//
// Every failure from the engine is returned as *Error.
package store
