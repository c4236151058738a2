package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

func TestEnvelopeCarriesPayload(t *testing.T) {
	twist := messages.Twist{Linear: frames.Vector3{X: 1}, Angular: frames.Vector3{Z: 0.5}}
	in := Envelope{
		Topic:       "simbridge.control.velocity",
		Source:      "teleop-ui",
		TimestampNs: 1_700_000_000_123,
		Kind:        message.MessageKindTWIST,
		Payload:     EncodeTwist(twist),
	}

	buf := EncodeEnvelope(in)
	out, err := DecodeEnvelope(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	got, err := DecodeTwist(out.Payload)
	require.NoError(t, err)
	assert.Equal(t, twist, got)

	// payload must not alias the envelope buffer
	for i := range buf {
		buf[i] = 0
	}
	_, err = DecodeTwist(out.Payload)
	assert.NoError(t, err)
}

func TestEnvelopeWithoutSource(t *testing.T) {
	out, err := DecodeEnvelope(EncodeEnvelope(Envelope{Topic: "t", Kind: message.MessageKindIMU}))
	require.NoError(t, err)
	assert.Empty(t, out.Source)
	assert.Empty(t, out.Payload)
	assert.Equal(t, message.MessageKindIMU, out.Kind)
}

func TestEnvelopeRequiresTopic(t *testing.T) {
	_, err := DecodeEnvelope(EncodeEnvelope(Envelope{Kind: message.MessageKindTWIST}))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestKindForType(t *testing.T) {
	assert.Equal(t, message.MessageKindTWIST, KindForType(messages.TypeTwist))
	assert.Equal(t, message.MessageKindODOMETRY, KindForType(messages.TypeOdometry))
	assert.Equal(t, message.MessageKindIMU, KindForType(messages.TypeImu))
	assert.Equal(t, message.MessageKindUNKNOWN, KindForType("std_msgs/msg/String"))
	assert.Equal(t, "MessageKind(9)", message.MessageKind(9).String())
}
