package processing

import (
	"sort"
	"sync"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
)

// TopicInfo holds metadata for a bus topic
type TopicInfo struct {
	BusTopic     string `json:"bus_topic"`
	RosTopic     string `json:"ros_topic"`
	MessageType  string `json:"type"`
	Priority     string `json:"priority"`
	Direction    string `json:"direction"`
	StatCount    int64  `json:"count"`
	LastReceived int64  `json:"last_received"`
}

// TopicRegistry maintains information about topics
type TopicRegistry struct {
	logger customlog.Logger
	topics map[string]*TopicInfo
	mu     sync.RWMutex
}

// NewTopicRegistry creates a new topic registry
func NewTopicRegistry(logger customlog.Logger) *TopicRegistry {
	return &TopicRegistry{
		logger: logger,
		topics: make(map[string]*TopicInfo),
	}
}

// LoadFromConfig replaces the registry contents with the config's topic
// mappings. Stats of topics that survive the reload are kept.
func (r *TopicRegistry) LoadFromConfig(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.topics
	r.topics = make(map[string]*TopicInfo)

	for _, mapping := range cfg.TopicMappings {
		priority := mapping.Priority
		if priority == "" {
			priority = cfg.Defaults.Priority
		}
		direction := mapping.Direction
		if direction == "" {
			direction = cfg.Defaults.Direction
		}

		info := &TopicInfo{
			BusTopic:    mapping.BusTopic,
			RosTopic:    mapping.RosTopic,
			MessageType: mapping.MessageType,
			Priority:    priority,
			Direction:   direction,
		}
		if prev, ok := old[mapping.BusTopic]; ok {
			info.StatCount = prev.StatCount
			info.LastReceived = prev.LastReceived
		}
		r.topics[mapping.BusTopic] = info
	}

	r.logger.Infof("Loaded %d topics into registry", len(r.topics))
}

// GetTopicPriority gets the priority for a topic
func (r *TopicRegistry) GetTopicPriority(topic string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.topics[topic]
	if !exists {
		return "", false
	}
	return info.Priority, true
}

// GetTopicInfo returns a copy of the topic's metadata.
func (r *TopicRegistry) GetTopicInfo(topic string) (TopicInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.topics[topic]
	if !exists {
		return TopicInfo{}, false
	}
	return *info, true
}

// UpdateTopicStats counts a received message. Unknown topics are
// registered as inbound with standard priority so they show up in stats.
func (r *TopicRegistry) UpdateTopicStats(topic string, timestamp int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.topics[topic]
	if !exists {
		info = &TopicInfo{
			BusTopic:  topic,
			Priority:  config.PriorityStandard,
			Direction: config.DirectionInbound,
		}
		r.topics[topic] = info
	}

	info.StatCount++
	info.LastReceived = timestamp
}

// GetMessageType gets the message type for a topic
func (r *TopicRegistry) GetMessageType(topic string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.topics[topic]
	if !exists || info.MessageType == "" {
		return "", false
	}
	return info.MessageType, true
}

// OutboundTopics returns the bus topics publishing messageType, sorted.
func (r *TopicRegistry) OutboundTopics(messageType string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var topics []string
	for topic, info := range r.topics {
		if info.Direction == config.DirectionOutbound && info.MessageType == messageType {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// GetAllTopics returns a sorted list of all registered topics
func (r *TopicRegistry) GetAllTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// GetTopicStats returns a copy of every topic's metadata and counters.
func (r *TopicRegistry) GetTopicStats() map[string]TopicInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]TopicInfo, len(r.topics))
	for topic, info := range r.topics {
		stats[topic] = *info
	}
	return stats
}
