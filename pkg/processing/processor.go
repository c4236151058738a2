package processing

import (
	"errors"
	"fmt"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

var (
	// ErrUnroutable is returned for envelopes whose type cannot be resolved.
	ErrUnroutable = errors.New("unroutable message")
	// ErrWrongDirection is returned for envelopes on an outbound topic.
	ErrWrongDirection = errors.New("topic is not inbound")
)

// InboundProcessor decodes inbound envelopes into typed messages.
type InboundProcessor struct {
	logger        customlog.Logger
	topicRegistry *TopicRegistry
}

// NewInboundProcessor creates a new inbound processor
func NewInboundProcessor(logger customlog.Logger, topicRegistry *TopicRegistry) *InboundProcessor {
	return &InboundProcessor{
		logger:        logger,
		topicRegistry: topicRegistry,
	}
}

// ProcessMessage returns a messages.Twist or messages.Odometry. The message
// type comes from the topic mapping, falling back to the envelope kind for
// unmapped topics.
func (p *InboundProcessor) ProcessMessage(env *wire.Envelope) (interface{}, error) {
	kind := env.Kind
	if info, ok := p.topicRegistry.GetTopicInfo(env.Topic); ok && info.MessageType != "" {
		if info.Direction == config.DirectionOutbound {
			return nil, fmt.Errorf("%w: %s", ErrWrongDirection, env.Topic)
		}
		kind = wire.KindForType(info.MessageType)
		if env.Kind != message.MessageKindUNKNOWN && env.Kind != kind {
			p.logger.Warnf("Envelope kind %s disagrees with mapping type %s on topic '%s', using mapping",
				env.Kind, info.MessageType, env.Topic)
		}
	}

	if len(env.Payload) == 0 {
		return nil, fmt.Errorf("empty payload for topic '%s'", env.Topic)
	}

	p.logger.Debugf("Processing %s envelope for topic '%s' (%d bytes)", kind, env.Topic, len(env.Payload))

	switch kind {
	case message.MessageKindTWIST:
		return wire.DecodeTwist(env.Payload)
	case message.MessageKindODOMETRY:
		return wire.DecodeOdometry(env.Payload)
	default:
		return nil, fmt.Errorf("%w: topic '%s' kind %s", ErrUnroutable, env.Topic, kind)
	}
}

// CreateProcessorFunc adapts the processor to the pool signature.
func (p *InboundProcessor) CreateProcessorFunc() MessageProcessor {
	return p.ProcessMessage
}

