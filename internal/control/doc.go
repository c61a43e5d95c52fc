// Package control provides open-loop actuation for voxel robots.
//
// A [TimeFunctions] grid maps every voxel slot to a function of simulated
// time whose value, clamped to [-1, 1], sets how far the voxel expands or
// contracts:
//
//   - [Sinusoidal]: a travelling wave sin(-2πft + 2πx/W)
//   - [Constant]: the same value everywhere
//   - [None]: zero everywhere (a passive body)
//
// # Usage
//
//	act := control.Sinusoidal(1.0, desc.W(), desc.H())
//	values := act.Values(t) // one value per slot
//
// TimeFunctions are immutable and may be shared between episodes.
package control
