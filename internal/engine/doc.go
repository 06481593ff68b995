// Package engine drives the simulation: one goroutine, one frame at a time.
//
// Each frame runs every registered system against the store with the wall
// time elapsed since the previous frame, renders the result, then sleeps
// until the next frame slot. The first frame ticks with a delta of zero.
//
// Frame loop:
//  1. record the frame start
//  2. tick systems in registration order (Movement, Gravity, Collision, ...)
//  3. render
//  4. stop if the run budget is exhausted, the frame limit is reached, or
//     the context is cancelled
//  5. sleep to the target frame rate
//  6. measure delta and publish 1/delta as the fps overlay
//
// The loop never runs systems concurrently. All store access goes through a
// single SQLite connection, so a system must finish with its cursor before
// the next one starts.
//
// Time comes from a Clock. Production uses the wall clock; tests pass a
// clock that only advances on Sleep, which makes every delta exact.
package engine
