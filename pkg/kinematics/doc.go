// Package kinematics advances the simulated Summit XL by one tick.
//
// A RobotState is shared by two writers with disjoint fields: the bus
// receiver (SetVelocityCommand, SetOdometry) and the Controller (Step).
// Neither side writes the other's fields. Readers outside the tick loop use
// Snapshot.
package kinematics
