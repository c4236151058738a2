package kinematics

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

func newTestController(t *testing.T, scale, radius float64) (*Controller, *RobotState) {
	t.Helper()
	state := NewRobotState()
	c, err := NewController(Params{Scale: scale, WheelRadius: radius}, state, customlog.NewWriterLogger("error", io.Discard))
	require.NoError(t, err)
	return c, state
}

func odomAt(sec int32, nsec uint32, x float64) messages.Odometry {
	return messages.Odometry{
		Stamp: frames.Timestamp{Sec: sec, Nanosec: nsec},
		Pose: frames.Pose{
			Position:    frames.Vector3{X: x, Y: 2, Z: 0},
			Orientation: frames.Quaternion{Z: 0.6, W: 0.8},
		},
	}
}

func TestNewControllerValidatesParams(t *testing.T) {
	state := NewRobotState()
	logger := customlog.NewWriterLogger("error", io.Discard)

	_, err := NewController(Params{Scale: 1, WheelRadius: 0}, state, logger)
	assert.Error(t, err)
	_, err = NewController(Params{Scale: 0, WheelRadius: 0.1}, state, logger)
	assert.Error(t, err)
	_, err = NewController(Params{Scale: 1, WheelRadius: math.NaN()}, state, logger)
	assert.Error(t, err)
	_, err = NewController(Params{Scale: 1, WheelRadius: 0.1}, nil, logger)
	assert.Error(t, err)
}

func TestExternalPoseBeforeOdometry(t *testing.T) {
	state := NewRobotState()
	_, err := state.ExternalPose()
	var use *UninitializedStateError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, "odometry", use.What)

	_, err = state.VelocityCommand()
	require.ErrorAs(t, err, &use)
}

func TestStepWithoutInputIsIdle(t *testing.T) {
	c, state := newTestController(t, 1, 0.1)

	for i := 0; i < 3; i++ {
		res := c.Step()
		assert.Zero(t, res.Dt)
		assert.False(t, res.Moved)
		assert.False(t, res.Initialized)
	}

	snap := state.Snapshot()
	assert.Equal(t, Uninitialized, snap.Mode)
	assert.Equal(t, uint64(3), snap.Tick)
	assert.Equal(t, uint64(3), snap.SkippedTicks)
	assert.Equal(t, frames.Pose{Orientation: frames.Identity}, snap.Chassis)
	assert.Nil(t, snap.Reel)
}

func TestStepZeroDtIsIdempotent(t *testing.T) {
	c, state := newTestController(t, 1, 0.1)
	state.SetVelocityCommand(messages.Twist{
		Linear:  frames.Vector3{X: 1},
		Angular: frames.Vector3{Z: 0.5},
	})
	state.SetOdometry(odomAt(100, 0, 0))

	c.Step()
	before := state.Snapshot()

	// Same stamp again: dt is zero, nothing moves.
	for i := 0; i < 5; i++ {
		res := c.Step()
		assert.Zero(t, res.Dt)
		assert.False(t, res.Moved)
		assert.Equal(t, WheelAngles{}, res.WheelDeltas)
	}

	after := state.Snapshot()
	assert.Equal(t, before.Chassis, after.Chassis)
	assert.Equal(t, before.Wheels, after.Wheels)
}

func TestStepAdvancesChassisAndWheels(t *testing.T) {
	c, state := newTestController(t, 1, 0.1)
	state.SetVelocityCommand(messages.Twist{
		Linear:  frames.Vector3{X: 1},
		Angular: frames.Vector3{Z: 0.4},
	})
	state.SetOdometry(odomAt(100, 0, 0))
	first := c.Step()
	assert.Zero(t, first.Dt, "first stamp has no predecessor")

	state.SetOdometry(odomAt(100, 500_000_000, 0))
	res := c.Step()

	assert.InDelta(t, 0.5, res.Dt, 1e-12)
	assert.InDelta(t, 0.5, res.Forward, 1e-12)
	assert.InDelta(t, 0.2, res.Angle, 1e-12)
	assert.True(t, res.Moved)
	assert.InDeltaSlice(t, []float64{5.2, 4.8, 5.2, 4.8}, res.WheelDeltas[:], 1e-9)

	snap := state.Snapshot()
	assert.InDeltaSlice(t, []float64{5.2, 4.8, 5.2, 4.8}, snap.Wheels[:], 1e-9)
	assert.InDelta(t, 0.5, snap.Chassis.Position.Z, 1e-12)

	// Outbound pose is external frame: sim +Z is external +X.
	assert.InDelta(t, 0.5, res.Odometry.Pose.Position.X, 1e-12)
	assert.Equal(t, frames.Timestamp{Sec: 100, Nanosec: 500_000_000}, res.Odometry.Stamp)
	assert.Equal(t, 1.0, res.Twist.Linear.X)
	assert.Equal(t, res.Odometry.Pose.Orientation, res.Imu.Orientation)

	// Linear velocity went 0 -> 1 over 0.5s.
	assert.InDelta(t, 2.0, res.Imu.LinearAcceleration.X, 1e-12)
}

func TestStepScalesChassisTranslation(t *testing.T) {
	c, state := newTestController(t, 1000, 0.1)
	state.SetVelocityCommand(messages.Twist{Linear: frames.Vector3{X: 1}})
	state.SetOdometry(odomAt(10, 0, 0))
	c.Step()
	state.SetOdometry(odomAt(10, 250_000_000, 0))
	res := c.Step()

	snap := state.Snapshot()
	assert.InDelta(t, 250, snap.Chassis.Position.Z, 1e-9, "scene units")
	assert.InDelta(t, 0.25, res.Odometry.Pose.Position.X, 1e-12, "meters")
	assert.InDeltaSlice(t, []float64{2.5, 2.5, 2.5, 2.5}, res.WheelDeltas[:], 1e-9)
}

func TestStepBackwardsStampHoldsStill(t *testing.T) {
	var buf bytes.Buffer
	state := NewRobotState()
	c, err := NewController(Params{Scale: 1, WheelRadius: 0.1}, state, customlog.NewWriterLogger("warn", &buf))
	require.NoError(t, err)

	state.SetVelocityCommand(messages.Twist{Linear: frames.Vector3{X: 1}})
	state.SetOdometry(odomAt(50, 0, 0))
	c.Step()
	state.SetOdometry(odomAt(49, 0, 0))
	res := c.Step()

	assert.Zero(t, res.Dt)
	assert.False(t, res.Moved)
	assert.Contains(t, buf.String(), "stamp went backwards")

	// The older stamp was not recorded, so the next forward stamp measures
	// from 50s.
	state.SetOdometry(odomAt(50, 100_000_000, 0))
	res = c.Step()
	assert.InDelta(t, 0.1, res.Dt, 1e-12)
}

func TestStepNonFiniteCommandHoldsStill(t *testing.T) {
	var buf bytes.Buffer
	state := NewRobotState()
	c, err := NewController(Params{Scale: 1, WheelRadius: 0.1}, state, customlog.NewWriterLogger("warn", &buf))
	require.NoError(t, err)

	state.SetOdometry(odomAt(1, 0, 0))
	c.Step()
	state.SetVelocityCommand(messages.Twist{Linear: frames.Vector3{X: math.NaN()}})
	state.SetOdometry(odomAt(2, 0, 0))
	res := c.Step()

	assert.False(t, res.Moved)
	assert.Zero(t, res.Dt)
	assert.Equal(t, messages.Twist{}, res.Twist)
	assert.Contains(t, buf.String(), "non-finite velocity command")
	assert.Equal(t, WheelAngles{}, state.Snapshot().Wheels)
}

func TestOneShotInitialization(t *testing.T) {
	c, state := newTestController(t, 1, 0.1)
	origin := frames.Pose{Orientation: frames.Identity}

	const n = 4
	for i := 1; i <= n; i++ {
		state.SetOdometry(odomAt(int32(i), 0, 0))
		res := c.Step()
		assert.False(t, res.Initialized, "tick %d", i)
		assert.Equal(t, origin, state.Snapshot().Chassis, "tick %d", i)
	}

	seed := odomAt(n+1, 0, 5.0)
	state.SetOdometry(seed)
	res := c.Step()
	require.True(t, res.Initialized)

	snap := state.Snapshot()
	assert.Equal(t, Tracking, snap.Mode)
	assert.Equal(t, uint64(n+1), snap.InitializedAtTick)
	assert.Equal(t, frames.ExternalPoseToSim(seed.Pose), snap.Chassis)
	require.NotNil(t, snap.Reel)
	assert.Equal(t, snap.Chassis, *snap.Reel)

	// Later poses never overwrite the chassis again.
	for i := n + 2; i <= n+5; i++ {
		state.SetOdometry(odomAt(int32(i), 0, float64(i)*3))
		res := c.Step()
		assert.False(t, res.Initialized, "tick %d", i)
		assert.Equal(t, frames.ExternalPoseToSim(seed.Pose), state.Snapshot().Chassis, "tick %d", i)
	}
	assert.Equal(t, uint64(n+1), state.Snapshot().InitializedAtTick)
}

func TestInitializationScalesPosition(t *testing.T) {
	c, state := newTestController(t, 1000, 0.1)
	state.SetOdometry(odomAt(1, 0, 1.5))
	res := c.Step()
	require.True(t, res.Initialized)

	chassis := state.Snapshot().Chassis
	// External (1.5, 2, 0) -> sim (2, 0, 1.5) -> scene mm.
	assert.InDelta(t, 2000, chassis.Position.X, 1e-9)
	assert.InDelta(t, 0, chassis.Position.Y, 1e-9)
	assert.InDelta(t, 1500, chassis.Position.Z, 1e-9)
}

func TestInitializationIgnoresNonFinitePose(t *testing.T) {
	c, state := newTestController(t, 1, 0.1)
	bad := odomAt(1, 0, 1)
	bad.Pose.Position.Y = math.Inf(1)
	state.SetOdometry(bad)

	res := c.Step()
	assert.False(t, res.Initialized)
	assert.Equal(t, Uninitialized, state.Snapshot().Mode)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "UNINITIALIZED", Uninitialized.String())
	assert.Equal(t, "TRACKING", Tracking.String())
	text, err := Tracking.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TRACKING", string(text))
}
