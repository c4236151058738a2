package kinematics

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
)

func quatAxisAngle(axis frames.Vector3, angle float64) quat.Number {
	return quat.Number(r3.NewRotation(angle, axis.Vec()))
}

func mulNumbers(a, b quat.Number) quat.Number {
	return quat.Mul(a, b)
}
