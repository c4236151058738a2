package processing

import (
	"fmt"
	"sync"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

// MessageDirector routes inbound envelopes to a processing pool chosen by
// the topic's priority.
type MessageDirector struct {
	logger           customlog.Logger
	highPriorityPool *ProcessingPool
	standardPool     *ProcessingPool
	lowPriorityPool  *ProcessingPool
	topicRegistry    *TopicRegistry
	running          bool
	mu               sync.RWMutex

	defaultQueueSize int
}

// DirectorOptions holds configuration options for the MessageDirector
type DirectorOptions struct {
	DefaultQueueSize int
}

// NewMessageDirector creates a new message director
func NewMessageDirector(
	logger customlog.Logger,
	topicRegistry *TopicRegistry,
	options *DirectorOptions,
) *MessageDirector {
	if options == nil || options.DefaultQueueSize <= 0 {
		options = &DirectorOptions{
			DefaultQueueSize: 100,
		}
	}

	return &MessageDirector{
		logger:           logger,
		topicRegistry:    topicRegistry,
		defaultQueueSize: options.DefaultQueueSize,
	}
}

// Initialize creates the processing pools based on the provided worker counts
func (d *MessageDirector) Initialize(highWorkers, standardWorkers, lowWorkers int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.highPriorityPool = NewProcessingPool(config.PriorityHigh, highWorkers, d.defaultQueueSize, d.logger)
	d.standardPool = NewProcessingPool(config.PriorityStandard, standardWorkers, d.defaultQueueSize, d.logger)
	d.lowPriorityPool = NewProcessingPool(config.PriorityLow, lowWorkers, d.defaultQueueSize, d.logger)

	d.logger.Infof("Message Director initialized with pools: HIGH(%d), STANDARD(%d), LOW(%d)",
		highWorkers, standardWorkers, lowWorkers)
}

func (d *MessageDirector) pools() []*ProcessingPool {
	return []*ProcessingPool{d.highPriorityPool, d.standardPool, d.lowPriorityPool}
}

// SetProcessor sets the message processor function for all pools
func (d *MessageDirector) SetProcessor(processor MessageProcessor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, pool := range d.pools() {
		if pool != nil {
			pool.SetProcessor(processor)
		}
	}
}

// SetResultHandler sets the result handler function for all pools
func (d *MessageDirector) SetResultHandler(handler ResultHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, pool := range d.pools() {
		if pool != nil {
			pool.SetResultHandler(handler)
		}
	}
}

// RouteMessage queues env on the pool matching its topic priority.
// Unmapped topics go to the standard pool.
func (d *MessageDirector) RouteMessage(env *wire.Envelope) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		return fmt.Errorf("message director is not running")
	}

	topic := env.Topic
	priority, exists := d.topicRegistry.GetTopicPriority(topic)
	if !exists {
		d.logger.Warnf("No priority found for topic '%s', using STANDARD", topic)
		priority = config.PriorityStandard
	}
	d.topicRegistry.UpdateTopicStats(topic, env.TimestampNs)

	var successful bool
	switch priority {
	case config.PriorityHigh:
		d.logger.Debugf("Routing message for topic '%s' to HIGH priority pool", topic)
		successful = d.highPriorityPool.ProcessMessage(env)
	case config.PriorityLow:
		d.logger.Debugf("Routing message for topic '%s' to LOW priority pool", topic)
		successful = d.lowPriorityPool.ProcessMessage(env)
	default:
		d.logger.Debugf("Routing message for topic '%s' to STANDARD priority pool", topic)
		successful = d.standardPool.ProcessMessage(env)
	}

	if !successful {
		return fmt.Errorf("failed to enqueue message for topic '%s' (priority: %s)", topic, priority)
	}
	return nil
}

// Start starts all processing pools
func (d *MessageDirector) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	d.running = true
	d.logger.Infof("Starting Message Director")

	for _, pool := range d.pools() {
		pool.Start()
	}
}

// Stop drains and stops all processing pools
func (d *MessageDirector) Stop() {
	d.mu.Lock()
	running := d.running
	d.running = false
	d.mu.Unlock()

	if !running {
		return
	}

	d.logger.Infof("Stopping Message Director")
	for _, pool := range d.pools() {
		pool.Stop()
	}
	d.logger.Infof("Message Director stopped")
}

// GetPoolMetrics returns metrics for all pools keyed by priority
func (d *MessageDirector) GetPoolMetrics() map[string]PoolMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()

	metrics := make(map[string]PoolMetrics)
	for _, pool := range d.pools() {
		if pool != nil {
			metrics[pool.GetName()] = pool.GetMetrics()
		}
	}
	return metrics
}
