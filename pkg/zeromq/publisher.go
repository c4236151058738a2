package zeromq

import (
	"fmt"

	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
)

// Topics used for configuration broadcasts.
const (
	TopicConfigUpdate       = "configuration.update"
	TopicConfigNotification = "configuration.notification"
)

// JSONPublisher is the part of ZeroMQService the config publisher needs.
type JSONPublisher interface {
	PublishJSON(topic string, messageType string, data interface{}) error
}

// ConfigPublisher publishes configuration updates to gateways
type ConfigPublisher struct {
	publisher JSONPublisher
	source    ConfigSource
	logger    customlog.Logger
}

// NewConfigPublisher creates a new publisher for configuration updates
func NewConfigPublisher(publisher JSONPublisher, source ConfigSource, logger customlog.Logger) *ConfigPublisher {
	return &ConfigPublisher{
		publisher: publisher,
		source:    source,
		logger:    logger,
	}
}

// PublishConfigUpdate publishes the full current configuration
func (p *ConfigPublisher) PublishConfigUpdate() error {
	cfg := p.source.GetCurrentConfig()
	if cfg == nil {
		return fmt.Errorf("no bridge configuration loaded")
	}
	p.logger.Infof("Publishing configuration update (ID: %s)", cfg.ConfigID)
	return p.publisher.PublishJSON(TopicConfigUpdate, MsgTypeConfigResponse, cfg)
}

// PublishConfigUpdatedNotification publishes a short notice that the
// configuration changed
func (p *ConfigPublisher) PublishConfigUpdatedNotification() error {
	cfg := p.source.GetCurrentConfig()
	if cfg == nil {
		return fmt.Errorf("no bridge configuration loaded")
	}
	p.logger.Infof("Publishing configuration update notification")

	notification := map[string]interface{}{
		"config_id":    cfg.ConfigID,
		"version":      cfg.Version,
		"last_updated": cfg.LastUpdated,
	}
	return p.publisher.PublishJSON(TopicConfigNotification, MsgTypeConfigUpdated, notification)
}

// RegisterBridgeHandlers registers the CONFIG_REQUEST, STATE_REQUEST and
// FLATBUFFER_TOPIC_MESSAGE handlers and returns the config publisher.
func RegisterBridgeHandlers(service *ZeroMQService, cfg ConfigSource, state StateSource, resolver TypeResolver, router EnvelopeRouter, logger customlog.Logger) *ConfigPublisher {
	service.RegisterHandler(MsgTypeConfigRequest, NewConfigHandler(cfg, logger))
	service.RegisterHandler(MsgTypeStateRequest, NewStateHandler(state, logger))
	service.RegisterHandler(MsgTypeFlatbufferTopic, NewFlatbufferMessageHandler(resolver, router, logger))

	publisher := NewConfigPublisher(service, cfg, logger)
	logger.Infof("Registered bridge handlers and configuration publisher")
	return publisher
}
