package kinematics

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

// Mode is the pose-tracking state.
type Mode int

const (
	// Uninitialized: no usable external pose yet.
	Uninitialized Mode = iota
	// Tracking: the chassis was seeded from the external pose.
	Tracking
)

func (m Mode) String() string {
	switch m {
	case Uninitialized:
		return "UNINITIALIZED"
	case Tracking:
		return "TRACKING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets Mode render as its name in JSON.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// WheelAngles holds one accumulated articulation angle per wheel, in radians.
type WheelAngles [4]float64

// Add returns the element-wise sum.
func (w WheelAngles) Add(d WheelAngles) WheelAngles {
	for i := range w {
		w[i] += d[i]
	}
	return w
}

// inbound is the receiver-owned part of RobotState.
type inbound struct {
	command    messages.Twist
	hasCommand bool
	odom       messages.Odometry
	hasOdom    bool
	reelSim    frames.Pose
	count      uint64
}

// simulated is the step-owned part of RobotState.
type simulated struct {
	chassis    frames.Pose
	wheels     WheelAngles
	lastStamp  frames.Timestamp
	hasStamp   bool
	lastLinear frames.Vector3
	mode       Mode
	tick       uint64
	skipped    uint64
	initTick   uint64
}

// RobotState is the per-instance state of one simulated robot.
type RobotState struct {
	ID uuid.UUID

	mu sync.RWMutex
	in inbound

	sim simulated

	snapshot atomic.Pointer[Snapshot]
}

// NewRobotState creates the state for one robot instance with the chassis
// at the sim-frame origin.
func NewRobotState() *RobotState {
	s := &RobotState{ID: uuid.New()}
	s.sim.chassis = frames.Pose{Orientation: frames.Identity}
	s.snapshot.Store(&Snapshot{ID: s.ID.String(), Chassis: s.sim.chassis})
	return s
}

// SetVelocityCommand records the latest commanded twist. Receiver side only.
func (s *RobotState) SetVelocityCommand(cmd messages.Twist) {
	s.mu.Lock()
	s.in.command = cmd
	s.in.hasCommand = true
	s.in.count++
	s.mu.Unlock()
}

// SetOdometry records the latest external odometry and its sim-frame pose.
// Receiver side only.
func (s *RobotState) SetOdometry(odom messages.Odometry) {
	reel := frames.ExternalPoseToSim(odom.Pose)
	s.mu.Lock()
	s.in.odom = odom
	s.in.hasOdom = true
	s.in.reelSim = reel
	s.in.count++
	s.mu.Unlock()
}

// ExternalPose returns the last received external-frame pose.
func (s *RobotState) ExternalPose() (frames.Pose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.in.hasOdom {
		return frames.Pose{}, &UninitializedStateError{What: "odometry"}
	}
	return s.in.odom.Pose, nil
}

// VelocityCommand returns the last received twist.
func (s *RobotState) VelocityCommand() (messages.Twist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.in.hasCommand {
		return messages.Twist{}, &UninitializedStateError{What: "velocity command"}
	}
	return s.in.command, nil
}

func (s *RobotState) inbound() inbound {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.in
}

// Snapshot returns the state as of the end of the last tick.
func (s *RobotState) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// Snapshot is a read-only copy of a RobotState for API and diagnostics.
type Snapshot struct {
	ID                string            `json:"id"`
	Mode              Mode              `json:"mode"`
	Tick              uint64            `json:"tick"`
	SkippedTicks      uint64            `json:"skipped_ticks"`
	InitializedAtTick uint64            `json:"initialized_at_tick,omitempty"`
	InboundMessages   uint64            `json:"inbound_messages"`
	LastDt            float64           `json:"last_dt"`
	Stamp             frames.Timestamp  `json:"stamp"`
	Chassis           frames.Pose       `json:"chassis"`
	Reel              *frames.Pose      `json:"reel,omitempty"`
	External          frames.Pose       `json:"external"`
	Wheels            WheelAngles       `json:"wheels"`
	WheelHubs         [4]frames.Vector3 `json:"wheel_hubs"`
	Command           messages.Twist    `json:"command"`
}
