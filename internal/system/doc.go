// Package system implements the per-frame systems of the simulation.
//
// Each system owns one prepared statement against the store and re-binds
// it on every Tick. Movement and Gravity are single set-oriented UPDATEs;
// Collision and Printer step a SELECT cursor to completion.
//
// ORDERING:
//
// The frame loop registers Movement, then Gravity, then Collision. Movement
// therefore integrates the velocity left by the previous frame's Gravity
// tick: a one-frame lag that keeps the update order simple. Registering
// Gravity first would give symplectic Euler and different positions.
//
// With gravity 25 and delta 1, starting at rest at y=100:
//
//	frame 1: y=100 vy=25
//	frame 2: y=125 vy=50
//	frame 3: y=175 vy=75
//
// Systems never cache row data between ticks; the store is the only state
// shared between them.
package system
