package kinematics

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
)

var (
	// chassisForward is the chassis driving axis in its own frame.
	chassisForward = r3.Vec{Z: 1}
	// worldUp is the simulation vertical.
	worldUp = r3.Vec{Y: 1}
)

// AdvancePose moves a sim-frame pose distance along its own forward axis,
// then yaws it by angle radians about the world vertical.
func AdvancePose(p frames.Pose, distance, angle float64) frames.Pose {
	rot := r3.Rotation(p.Orientation.Number())
	forward := rot.Rotate(chassisForward)
	pos := r3.Add(p.Position.Vec(), r3.Scale(distance, forward))

	yaw := quat.Number(r3.NewRotation(angle, worldUp))
	q := quat.Mul(yaw, p.Orientation.Number())

	return frames.Pose{Position: frames.FromVec(pos), Orientation: frames.FromNumber(q)}
}

// WheelDeltas splits one tick of motion into per-wheel angle increments.
// Every wheel rolls fwd/radius. Wheels 0 and 2 (+X side) gain angle and
// wheels 1 and 3 lose it, so the two sides counter-rotate when turning in
// place.
func WheelDeltas(fwd, angle, radius float64) WheelAngles {
	roll := fwd / radius
	return WheelAngles{
		roll + angle,
		roll - angle,
		roll + angle,
		roll - angle,
	}
}
