package wire

import (
	"errors"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

func TestTwistRoundTrip(t *testing.T) {
	in := messages.Twist{
		Linear:  frames.Vector3{X: 0.4, Y: -0.1, Z: 0},
		Angular: frames.Vector3{Z: 1.25},
	}
	out, err := DecodeTwist(EncodeTwist(in))
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("twist mismatch (-want +got):\n%s", diff)
	}
}

func TestOdometryRoundTrip(t *testing.T) {
	in := messages.Odometry{
		Stamp: frames.Timestamp{Sec: 1712, Nanosec: 999_999_999},
		Pose: frames.Pose{
			Position:    frames.Vector3{X: 1.5, Y: -2, Z: 0.1},
			Orientation: frames.Quaternion{X: 0, Y: 0, Z: 0.3826834, W: 0.9238795},
		},
		Linear:  frames.Vector3{X: 0.5},
		Angular: frames.Vector3{Z: -0.2},
	}
	out, err := DecodeOdometry(EncodeOdometry(in))
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("odometry mismatch (-want +got):\n%s", diff)
	}
}

func TestImuRoundTrip(t *testing.T) {
	in := messages.Imu{
		Stamp:              frames.Timestamp{Sec: -3, Nanosec: 5},
		Orientation:        frames.Identity,
		AngularVelocity:    frames.Vector3{Z: 0.7},
		LinearAcceleration: frames.Vector3{X: 2},
	}
	out, err := DecodeImu(EncodeImu(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestOdometryMissingPose(t *testing.T) {
	b := flatbuffers.NewBuilder(64)
	message.OdometryStart(b)
	message.OdometryAddStamp(b, message.CreateStamp(b, 1, 0))
	b.Finish(message.OdometryEnd(b))

	_, err := DecodeOdometry(b.FinishedBytes())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "odometry", de.Message)
	assert.Equal(t, "position", de.Field)
}

func TestOdometryOptionalVelocities(t *testing.T) {
	b := flatbuffers.NewBuilder(64)
	message.OdometryStart(b)
	message.OdometryAddStamp(b, message.CreateStamp(b, 4, 2))
	message.OdometryAddPosition(b, message.CreateVec3(b, 1, 2, 3))
	message.OdometryAddOrientation(b, message.CreateQuat(b, 0, 0, 0, 1))
	b.Finish(message.OdometryEnd(b))

	odom, err := DecodeOdometry(b.FinishedBytes())
	require.NoError(t, err)
	assert.Equal(t, frames.Vector3{}, odom.Linear)
	assert.Equal(t, frames.Vector3{X: 1, Y: 2, Z: 3}, odom.Pose.Position)
}

func TestDecodeMalformedBuffers(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"nil", nil, ErrTruncated},
		{"short", []byte{1, 2, 3}, ErrTruncated},
		{"zeroed", make([]byte, 8), ErrMissingField},
		{"root offset out of range", []byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0}, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTwist(tt.buf)
			assert.ErrorIs(t, err, tt.want)
			_, err = DecodeOdometry(tt.buf)
			assert.ErrorIs(t, err, tt.want)
			_, err = DecodeImu(tt.buf)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
