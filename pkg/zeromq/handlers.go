package zeromq

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/kinematics"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

// ConfigSource yields the current bridge configuration.
type ConfigSource interface {
	GetCurrentConfig() *config.Config
}

// StateSource yields the latest robot state snapshot.
type StateSource interface {
	Snapshot() kinematics.Snapshot
}

// TypeResolver maps a bus topic to its ROS message type.
type TypeResolver interface {
	GetMessageType(topic string) (string, bool)
}

func expectType(data []byte, want string) error {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type != want {
		return fmt.Errorf("unexpected message type: %s", msg.Type)
	}
	return nil
}

func respond(msgType string, data interface{}) ([]byte, error) {
	responseData, err := json.Marshal(newMessage(msgType, data))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}
	return responseData, nil
}

// ConfigHandler handles CONFIG_REQUEST messages
type ConfigHandler struct {
	source ConfigSource
	logger customlog.Logger
}

// NewConfigHandler creates a new handler for configuration requests
func NewConfigHandler(source ConfigSource, logger customlog.Logger) *ConfigHandler {
	return &ConfigHandler{
		source: source,
		logger: logger,
	}
}

// HandleMessage processes a CONFIG_REQUEST message and returns a CONFIG_RESPONSE
func (h *ConfigHandler) HandleMessage(data []byte) ([]byte, error) {
	if err := expectType(data, MsgTypeConfigRequest); err != nil {
		return nil, err
	}

	cfg := h.source.GetCurrentConfig()
	if cfg == nil {
		return nil, fmt.Errorf("no bridge configuration loaded")
	}

	h.logger.Debugf("Answering configuration request (ID: %s)", cfg.ConfigID)
	return respond(MsgTypeConfigResponse, cfg)
}

// StateHandler handles STATE_REQUEST messages
type StateHandler struct {
	source StateSource
	logger customlog.Logger
}

// NewStateHandler creates a new handler for state requests
func NewStateHandler(source StateSource, logger customlog.Logger) *StateHandler {
	return &StateHandler{
		source: source,
		logger: logger,
	}
}

// HandleMessage returns the latest snapshot as a STATE_RESPONSE
func (h *StateHandler) HandleMessage(data []byte) ([]byte, error) {
	if err := expectType(data, MsgTypeStateRequest); err != nil {
		return nil, err
	}
	snap := h.source.Snapshot()
	h.logger.Debugf("Answering state request at tick %d", snap.Tick)
	return respond(MsgTypeStateResponse, snap)
}

// FlatbufferTopicData is the Data field of a FLATBUFFER_TOPIC_MESSAGE. The
// payload is a bare Twist or Odometry table; Kind is only consulted for
// topics without a mapping.
type FlatbufferTopicData struct {
	Topic      string `json:"topic"`
	Kind       string `json:"kind,omitempty"`
	Base64Data string `json:"base64_data"`
}

type flatbufferTopicMessage struct {
	Type string              `json:"type"`
	Data FlatbufferTopicData `json:"data"`
}

// FlatbufferMessageHandler handles FLATBUFFER_TOPIC_MESSAGE messages for
// clients that can only speak JSON over REQ.
type FlatbufferMessageHandler struct {
	resolver TypeResolver
	router   EnvelopeRouter
	logger   customlog.Logger
}

// NewFlatbufferMessageHandler creates a new handler for flatbuffer messages
func NewFlatbufferMessageHandler(resolver TypeResolver, router EnvelopeRouter, logger customlog.Logger) *FlatbufferMessageHandler {
	return &FlatbufferMessageHandler{
		resolver: resolver,
		router:   router,
		logger:   logger,
	}
}

// HandleMessage wraps the payload in an envelope and routes it inbound
func (h *FlatbufferMessageHandler) HandleMessage(data []byte) ([]byte, error) {
	var msg flatbufferTopicMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse flatbuffer wrapper message: %w", err)
	}
	if msg.Type != MsgTypeFlatbufferTopic {
		return nil, fmt.Errorf("unexpected message type for FlatbufferMessageHandler: %s", msg.Type)
	}
	if msg.Data.Topic == "" || msg.Data.Base64Data == "" {
		return nil, fmt.Errorf("%w: missing topic or base64_data", ErrInvalidMessage)
	}

	payload, err := base64.StdEncoding.DecodeString(msg.Data.Base64Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data for topic %s: %w", msg.Data.Topic, err)
	}

	kind := message.MessageKindUNKNOWN
	if messageType, ok := h.resolver.GetMessageType(msg.Data.Topic); ok {
		kind = wire.KindForType(messageType)
	} else if k, ok := message.EnumValuesMessageKind[msg.Data.Kind]; ok {
		kind = k
	}

	env := wire.Envelope{
		Topic:       msg.Data.Topic,
		Source:      "zmq-req",
		TimestampNs: time.Now().UnixNano(),
		Kind:        kind,
		Payload:     payload,
	}
	h.logger.Debugf("Routing %s payload for topic %s (%d bytes)", kind, env.Topic, len(payload))

	if err := h.router.RouteMessage(&env); err != nil {
		return nil, fmt.Errorf("routing topic '%s': %w", env.Topic, err)
	}
	return ackResponse(env.Topic, "Flatbuffer accepted")
}
