package kinematics

import (
	"fmt"
	"math"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

// Params configures a Controller.
type Params struct {
	// Scale converts meters to scene units (1 or 1000).
	Scale float64
	// WheelRadius in meters.
	WheelRadius float64
}

// Validate checks that both values are usable divisors/multipliers.
func (p Params) Validate() error {
	if !(p.Scale > 0) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("robot scale must be positive, got %v", p.Scale)
	}
	if !(p.WheelRadius > 0) || math.IsInf(p.WheelRadius, 0) {
		return fmt.Errorf("wheel radius must be positive, got %v", p.WheelRadius)
	}
	return nil
}

// StepResult describes what one tick did.
type StepResult struct {
	Dt          float64
	Forward     float64
	Angle       float64
	Moved       bool
	WheelDeltas WheelAngles
	Initialized bool

	Odometry messages.Odometry
	Imu      messages.Imu
	Twist    messages.Twist
}

// Controller runs the kinematic update for one RobotState.
type Controller struct {
	params   Params
	geometry Geometry
	state    *RobotState
	logger   customlog.Logger
}

// NewController validates params and binds the controller to state.
func NewController(params Params, state *RobotState, logger customlog.Logger) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("robot state cannot be nil")
	}
	return &Controller{
		params:   params,
		geometry: SummitXLGeometry(params.Scale),
		state:    state,
		logger:   logger.WithField("robot", state.ID.String()[:8]),
	}, nil
}

// Params returns the controller configuration.
func (c *Controller) Params() Params {
	return c.params
}

// Step advances the robot by one tick. It never fails: bad input freezes
// motion for the tick and is logged.
func (c *Controller) Step() StepResult {
	in := c.state.inbound()
	sim := &c.state.sim
	sim.tick++

	var res StepResult
	res.Dt = c.elapsed(in)

	cmd := in.command
	switch {
	case !in.hasCommand:
		cmd = messages.Twist{}
	case !cmd.IsFinite():
		c.logger.Warnf("Tick %d: non-finite velocity command %+v, holding still", sim.tick, cmd)
		cmd = messages.Twist{}
		res.Dt = 0
	}

	if res.Dt > 0 {
		res.Forward = cmd.Linear.X * res.Dt
		res.Angle = cmd.Angular.Z * res.Dt
	}

	if res.Forward != 0 || res.Angle != 0 {
		sim.chassis = AdvancePose(sim.chassis, res.Forward*c.params.Scale, res.Angle)
		res.WheelDeltas = WheelDeltas(res.Forward, res.Angle, c.params.WheelRadius)
		sim.wheels = sim.wheels.Add(res.WheelDeltas)
		res.Moved = true
	} else {
		sim.skipped++
	}

	c.publish(&res, cmd)

	if sim.mode == Uninitialized && c.readyToSeed(in) {
		sim.chassis = c.toScene(in.reelSim)
		sim.mode = Tracking
		sim.initTick = sim.tick
		res.Initialized = true
		c.logger.Infof("Chassis pose initialized from external odometry at tick %d: %+v",
			sim.tick, sim.chassis.Position)
	}

	c.storeSnapshot(res, in, cmd)
	return res
}

// elapsed returns the time since the previous stamp and records the new one.
func (c *Controller) elapsed(in inbound) float64 {
	sim := &c.state.sim
	if !in.hasOdom {
		return 0
	}
	stamp := in.odom.Stamp
	if !sim.hasStamp {
		sim.lastStamp = stamp
		sim.hasStamp = true
		return 0
	}

	dt := float64(int64(stamp.Sec)-int64(sim.lastStamp.Sec)) +
		float64(int64(stamp.Nanosec)-int64(sim.lastStamp.Nanosec))/1e9
	if dt < 0 {
		c.logger.Warnf("Tick %d: stamp went backwards by %.6fs, holding still", sim.tick, -dt)
		return 0
	}
	sim.lastStamp = stamp
	return dt
}

// readyToSeed reports whether the received pose can replace the chassis
// pose. A zero external X is the placeholder sent before localization.
func (c *Controller) readyToSeed(in inbound) bool {
	if !in.hasOdom || in.odom.Pose.Position.X == 0 {
		return false
	}
	if !in.odom.Pose.Position.IsFinite() || !in.odom.Pose.Orientation.IsFinite() {
		c.logger.Warnf("Tick %d: ignoring non-finite external pose %+v", c.state.sim.tick, in.odom.Pose)
		return false
	}
	return true
}

// publish fills the outbound messages from the post-update chassis pose.
func (c *Controller) publish(res *StepResult, cmd messages.Twist) {
	sim := &c.state.sim
	ext := frames.SimPoseToExternal(c.fromScene(sim.chassis))

	var accel frames.Vector3
	if res.Dt > 0 {
		accel = frames.Vector3{
			X: (cmd.Linear.X - sim.lastLinear.X) / res.Dt,
			Y: (cmd.Linear.Y - sim.lastLinear.Y) / res.Dt,
			Z: (cmd.Linear.Z - sim.lastLinear.Z) / res.Dt,
		}
		sim.lastLinear = cmd.Linear
	}

	stamp := sim.lastStamp
	res.Odometry = messages.Odometry{
		Stamp:   stamp,
		Pose:    ext,
		Linear:  cmd.Linear,
		Angular: cmd.Angular,
	}
	res.Imu = messages.Imu{
		Stamp:              stamp,
		Orientation:        ext.Orientation,
		AngularVelocity:    cmd.Angular,
		LinearAcceleration: accel,
	}
	res.Twist = cmd
}

func (c *Controller) storeSnapshot(res StepResult, in inbound, cmd messages.Twist) {
	sim := &c.state.sim
	snap := &Snapshot{
		ID:                c.state.ID.String(),
		Mode:              sim.mode,
		Tick:              sim.tick,
		SkippedTicks:      sim.skipped,
		InitializedAtTick: sim.initTick,
		InboundMessages:   in.count,
		LastDt:            res.Dt,
		Stamp:             sim.lastStamp,
		Chassis:           sim.chassis,
		External:          frames.SimPoseToExternal(c.fromScene(sim.chassis)),
		Wheels:            sim.wheels,
		WheelHubs:         c.geometry.WheelHubs(sim.chassis),
		Command:           cmd,
	}
	if in.hasOdom {
		reel := c.toScene(in.reelSim)
		snap.Reel = &reel
	}
	c.state.snapshot.Store(snap)
}

// toScene scales a meter-based sim pose into scene units.
func (c *Controller) toScene(p frames.Pose) frames.Pose {
	p.Position = frames.Vector3{
		X: p.Position.X * c.params.Scale,
		Y: p.Position.Y * c.params.Scale,
		Z: p.Position.Z * c.params.Scale,
	}
	return p
}

// fromScene is the inverse of toScene.
func (c *Controller) fromScene(p frames.Pose) frames.Pose {
	p.Position = frames.Vector3{
		X: p.Position.X / c.params.Scale,
		Y: p.Position.Y / c.params.Scale,
		Z: p.Position.Z / c.params.Scale,
	}
	return p
}
