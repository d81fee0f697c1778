// Package twin implements the telemetry ingestion, replay, and smoothing
// pipeline behind the motor digital-twin dashboard.
//
// # Reading Guide
//
// Start with these three files to understand the pipeline kernel:
//   - reading.go: raw record normalization into the canonical Reading shape
//   - replay.go: the replay driver that cycles the historical buffer and
//     animates the displayed reading toward a moving target
//   - pipeline.go: subscription routing, synthetic fallback, and the view
//     snapshot surface
//
// # Architecture
//
// All mutable pipeline state is owned by a single cooperative run loop
// (loop.go): subscription callbacks are posted onto the loop, and the
// periodic "advance" and "smooth" actions are two scheduled tasks on the
// same loop. There is no locking in the core; the only cross-goroutine
// surface is the immutable Snapshot published after every mutation.
//
// The five near-duplicate pipeline variants of the original dashboard are
// collapsed into one Config: {capacity, smoothing mode, cadence pair, seed
// strategy}. See config.go.
package twin
