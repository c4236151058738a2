package kinematics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
)

// Geometry holds Summit XL mount points in the chassis frame, sim axes,
// already multiplied by the robot scale.
type Geometry struct {
	WheelMounts [4]frames.Vector3
	Laser       frames.Vector3
	GPS         frames.Vector3
	TrunkMount  frames.Pose
}

// SummitXLGeometry returns the mount points for a robot built at scale
// (1 for meters, 1000 for millimeters).
func SummitXLGeometry(scale float64) Geometry {
	s := func(x, y, z float64) frames.Vector3 {
		return frames.Vector3{X: x * scale, Y: y * scale, Z: z * scale}
	}
	return Geometry{
		// Wheel order matches the articulation indices: 0 and 2 on the +X side.
		WheelMounts: [4]frames.Vector3{
			s(0.229, 0, 0.235),
			s(-0.229, 0, 0.235),
			s(0.229, 0, -0.235),
			s(-0.229, 0, -0.235),
		},
		Laser: s(0, 0.28, 0),
		GPS:   s(0, 0.275, -0.22),
		TrunkMount: frames.Pose{
			Position:    s(0, 0.26, 0.32),
			Orientation: frames.Quaternion{X: -0.5, Y: -0.5, Z: -0.5, W: 0.5},
		},
	}
}

// WheelHubs places the wheel mounts in the world using the chassis pose.
func (g Geometry) WheelHubs(chassis frames.Pose) [4]frames.Vector3 {
	var hubs [4]frames.Vector3
	for i, m := range g.WheelMounts {
		hubs[i] = transformPoint(chassis, m)
	}
	return hubs
}

func transformPoint(p frames.Pose, local frames.Vector3) frames.Vector3 {
	rot := r3.Rotation(p.Orientation.Number())
	return frames.FromVec(r3.Add(p.Position.Vec(), rot.Rotate(local.Vec())))
}
