// Package physics builds voxel-based soft robots and their surroundings on
// top of the box2d rigid-body solver.
//
// A voxel is four square vertex bodies joined by spring-damper distance
// joints. Which springs exist is selected by a [Scaffolding] set:
//
//   - [SideExternal]: along each side, between the outer faces
//   - [SideInternal]: along each side, between the inner faces
//   - [SideCross]: two crossed springs per side
//   - [CentralCross]: the two diagonals of the voxel
//
// Adjacent voxels of a [Robot] are welded at their facing vertex bodies.
// Actuation changes the target length of every spring of a voxel.
//
// # Building a world
//
//	w, _ := physics.NewWorld(dynamo.DefaultSettings())
//	robot, _ := physics.NewRobot(desc)
//	ground, _ := physics.NewGround(profile)
//	robot.Translate(move)
//	_ = w.Add(ground, robot)
//	for i := 0; i < n; i++ {
//	    w.Step()
//	    robot.Act(float64(i+1) * dt)
//	}
//
// Worlds are single-goroutine objects. Descriptions are immutable and can be
// shared by any number of concurrent episodes.
package physics
