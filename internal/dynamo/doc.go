// Package dynamo provides the value types shared by the episode engine.
//
// The package defines the primitives every other package speaks:
//
//   - [Vec2], [Point2], [BoundingBox]: planar geometry
//   - [Settings]: physics step interval and solver iterations
//   - [Snapshot], [ObjectState]: immutable per-step world captures
//   - [Observer]: synchronous snapshot sink
//   - [Field], [Series]: episode outputs
//
// # Example
//
//	obs := dynamo.ObserverFunc(func(s dynamo.Snapshot) {
//	    fmt.Println(s.Time, len(s.Objects))
//	})
//	res, _ := episode.Run(ctx, desc, obs)
//
// # Thread Safety
//
// Values are immutable once built and may be shared between goroutines.
// [Series] is append-only and NOT safe for concurrent appends; each episode
// owns its own. [ForEach] runs independent jobs on a bounded worker pool.
package dynamo
