// Package frames converts poses and stamps between the simulation frame and
// the external robot frame.
//
// The simulation is Y-up with the chassis driving along +Z. The external robot
// (ROS REP-103) is Z-up with the base driving along +X. The mapping is a pure
// axis permutation with no sign change:
//
//	sim.position    = (ext.y, ext.z, ext.x)
//	ext.position    = (sim.z, sim.x, sim.y)
//	sim.orientation = (ext.x, ext.z, ext.y, ext.w)
//	ext.orientation = (sim.x, sim.z, sim.y, sim.w)
//
// No function here rescales or re-normalizes. Use Normalize when a caller
// needs a unit quaternion.
package frames
