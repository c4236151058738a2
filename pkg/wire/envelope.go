package wire

import (
	"time"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

// Envelope is the decoded BridgeMessage carried on every bus topic.
type Envelope struct {
	Topic       string
	Source      string
	TimestampNs int64
	Kind        message.MessageKind
	Payload     []byte
}

// KindForType maps a ROS message type name to its envelope kind.
func KindForType(messageType string) message.MessageKind {
	switch messageType {
	case messages.TypeTwist:
		return message.MessageKindTWIST
	case messages.TypeOdometry:
		return message.MessageKindODOMETRY
	case messages.TypeImu:
		return message.MessageKindIMU
	default:
		return message.MessageKindUNKNOWN
	}
}

// NewEnvelope stamps an envelope with the current wall clock.
func NewEnvelope(topic, source string, kind message.MessageKind, payload []byte) Envelope {
	return Envelope{
		Topic:       topic,
		Source:      source,
		TimestampNs: time.Now().UnixNano(),
		Kind:        kind,
		Payload:     payload,
	}
}

// EncodeEnvelope returns a finished BridgeMessage buffer.
func EncodeEnvelope(e Envelope) []byte {
	b := flatbuffers.NewBuilder(initialBufferSize + len(e.Payload))
	topic := b.CreateString(e.Topic)
	var source flatbuffers.UOffsetT
	if e.Source != "" {
		source = b.CreateString(e.Source)
	}
	payload := b.CreateByteVector(e.Payload)

	message.BridgeMessageStart(b)
	message.BridgeMessageAddTopic(b, topic)
	if source != 0 {
		message.BridgeMessageAddSource(b, source)
	}
	message.BridgeMessageAddTimestampNs(b, e.TimestampNs)
	message.BridgeMessageAddKind(b, e.Kind)
	message.BridgeMessageAddPayload(b, payload)
	message.FinishBridgeMessageBuffer(b, message.BridgeMessageEnd(b))
	return b.FinishedBytes()
}

// DecodeEnvelope parses a BridgeMessage. The payload is copied out of buf.
func DecodeEnvelope(buf []byte) (e Envelope, err error) {
	const name = "envelope"
	defer recoverDecode(name, &err)
	if err := checkBuffer(name, buf); err != nil {
		return e, err
	}

	m := message.GetRootAsBridgeMessage(buf, 0)
	topic := m.Topic()
	if len(topic) == 0 {
		return e, missing(name, "topic")
	}
	e.Topic = string(topic)
	e.Source = string(m.Source())
	e.TimestampNs = m.TimestampNs()
	e.Kind = m.Kind()
	e.Payload = append([]byte(nil), m.PayloadBytes()...)
	return e, nil
}
