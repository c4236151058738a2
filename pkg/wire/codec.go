// Package wire converts bridge messages to and from their flatbuffers
// encoding. Every decoder returns a *DecodeError instead of panicking on a
// malformed buffer.
package wire

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

const initialBufferSize = 256

func createVec3(b *flatbuffers.Builder, v frames.Vector3) flatbuffers.UOffsetT {
	return message.CreateVec3(b, v.X, v.Y, v.Z)
}

func createQuat(b *flatbuffers.Builder, q frames.Quaternion) flatbuffers.UOffsetT {
	return message.CreateQuat(b, q.X, q.Y, q.Z, q.W)
}

func createStamp(b *flatbuffers.Builder, t frames.Timestamp) flatbuffers.UOffsetT {
	return message.CreateStamp(b, t.Sec, t.Nanosec)
}

func readVec3(v *message.Vec3) frames.Vector3 {
	return frames.Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func readQuat(q *message.Quat) frames.Quaternion {
	return frames.Quaternion{X: q.X(), Y: q.Y(), Z: q.Z(), W: q.W()}
}

func readStamp(s *message.Stamp) frames.Timestamp {
	return frames.Timestamp{Sec: s.Sec(), Nanosec: s.Nanosec()}
}

// EncodeTwist returns a finished Twist buffer.
func EncodeTwist(t messages.Twist) []byte {
	b := flatbuffers.NewBuilder(initialBufferSize)
	message.TwistStart(b)
	message.TwistAddLinear(b, createVec3(b, t.Linear))
	message.TwistAddAngular(b, createVec3(b, t.Angular))
	b.Finish(message.TwistEnd(b))
	return b.FinishedBytes()
}

// DecodeTwist parses a buffer produced by EncodeTwist.
func DecodeTwist(buf []byte) (t messages.Twist, err error) {
	const name = "twist"
	defer recoverDecode(name, &err)
	if err := checkBuffer(name, buf); err != nil {
		return t, err
	}

	m := message.GetRootAsTwist(buf, 0)
	lin := m.Linear(nil)
	if lin == nil {
		return t, missing(name, "linear")
	}
	ang := m.Angular(nil)
	if ang == nil {
		return t, missing(name, "angular")
	}
	t.Linear = readVec3(lin)
	t.Angular = readVec3(ang)
	return t, nil
}

// EncodeOdometry returns a finished Odometry buffer.
func EncodeOdometry(o messages.Odometry) []byte {
	b := flatbuffers.NewBuilder(initialBufferSize)
	message.OdometryStart(b)
	message.OdometryAddStamp(b, createStamp(b, o.Stamp))
	message.OdometryAddPosition(b, createVec3(b, o.Pose.Position))
	message.OdometryAddOrientation(b, createQuat(b, o.Pose.Orientation))
	message.OdometryAddLinear(b, createVec3(b, o.Linear))
	message.OdometryAddAngular(b, createVec3(b, o.Angular))
	b.Finish(message.OdometryEnd(b))
	return b.FinishedBytes()
}

// DecodeOdometry parses a buffer produced by EncodeOdometry. Stamp, position
// and orientation are required; absent velocities decode as zero.
func DecodeOdometry(buf []byte) (o messages.Odometry, err error) {
	const name = "odometry"
	defer recoverDecode(name, &err)
	if err := checkBuffer(name, buf); err != nil {
		return o, err
	}

	m := message.GetRootAsOdometry(buf, 0)
	stamp := m.Stamp(nil)
	if stamp == nil {
		return o, missing(name, "stamp")
	}
	pos := m.Position(nil)
	if pos == nil {
		return o, missing(name, "position")
	}
	rot := m.Orientation(nil)
	if rot == nil {
		return o, missing(name, "orientation")
	}
	o.Stamp = readStamp(stamp)
	o.Pose = frames.Pose{Position: readVec3(pos), Orientation: readQuat(rot)}
	if v := m.Linear(nil); v != nil {
		o.Linear = readVec3(v)
	}
	if v := m.Angular(nil); v != nil {
		o.Angular = readVec3(v)
	}
	return o, nil
}

// EncodeImu returns a finished Imu buffer.
func EncodeImu(i messages.Imu) []byte {
	b := flatbuffers.NewBuilder(initialBufferSize)
	message.ImuStart(b)
	message.ImuAddStamp(b, createStamp(b, i.Stamp))
	message.ImuAddOrientation(b, createQuat(b, i.Orientation))
	message.ImuAddAngularVelocity(b, createVec3(b, i.AngularVelocity))
	message.ImuAddLinearAcceleration(b, createVec3(b, i.LinearAcceleration))
	b.Finish(message.ImuEnd(b))
	return b.FinishedBytes()
}

// DecodeImu parses a buffer produced by EncodeImu.
func DecodeImu(buf []byte) (i messages.Imu, err error) {
	const name = "imu"
	defer recoverDecode(name, &err)
	if err := checkBuffer(name, buf); err != nil {
		return i, err
	}

	m := message.GetRootAsImu(buf, 0)
	stamp := m.Stamp(nil)
	if stamp == nil {
		return i, missing(name, "stamp")
	}
	rot := m.Orientation(nil)
	if rot == nil {
		return i, missing(name, "orientation")
	}
	i.Stamp = readStamp(stamp)
	i.Orientation = readQuat(rot)
	if v := m.AngularVelocity(nil); v != nil {
		i.AngularVelocity = readVec3(v)
	}
	if v := m.LinearAcceleration(nil); v != nil {
		i.LinearAcceleration = readVec3(v)
	}
	return i, nil
}
