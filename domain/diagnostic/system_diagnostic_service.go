package diagnostic

import (
	"runtime"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/kinematics"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/processing"
)

// StateSource exposes the last tick snapshot.
type StateSource interface {
	Snapshot() kinematics.Snapshot
}

// PoolSource exposes inbound pool metrics keyed by pool name.
type PoolSource interface {
	GetPoolMetrics() map[string]processing.PoolMetrics
}

// TopicSource exposes per-topic receive statistics.
type TopicSource interface {
	GetTopicStats() map[string]processing.TopicInfo
}

// SystemMetrics represents system diagnostics information
type SystemMetrics struct {
	Timestamp time.Time              `json:"timestamp"`
	RobotID   string                 `json:"robot_id"`
	Process   ProcessStatus          `json:"process"`
	Robot     RobotStatus            `json:"robot"`
	Pools     []PoolStatus           `json:"pools"`
	Topics    []processing.TopicInfo `json:"topics"`
}

// ProcessStatus describes the bridge process itself.
type ProcessStatus struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
}

// RobotStatus summarizes the kinematic step counters.
type RobotStatus struct {
	ID                string          `json:"id"`
	Mode              kinematics.Mode `json:"mode"`
	Ticks             uint64          `json:"ticks"`
	SkippedTicks      uint64          `json:"skipped_ticks"`
	InitializedAtTick uint64          `json:"initialized_at_tick"`
	InboundMessages   uint64          `json:"inbound_messages"`
	LastDt            float64         `json:"last_dt"`
}

// PoolStatus is one inbound pool's metrics.
type PoolStatus struct {
	Name string `json:"name"`
	processing.PoolMetrics
}

// DiagnosticService handles system diagnostics
type DiagnosticService struct {
	robotID string
	started time.Time
	state   StateSource
	pools   PoolSource
	topics  TopicSource
}

// NewDiagnosticService creates a new diagnostic service instance. pools and
// topics may be nil.
func NewDiagnosticService(robotID string, state StateSource, pools PoolSource, topics TopicSource) *DiagnosticService {
	return &DiagnosticService{
		robotID: robotID,
		started: time.Now(),
		state:   state,
		pools:   pools,
		topics:  topics,
	}
}

// GetMetricsHandler handles API requests for system metrics
func (s *DiagnosticService) GetMetricsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"metrics": s.GetMetrics(),
	})
}

// GetMetrics collects the current system metrics
func (s *DiagnosticService) GetMetrics() SystemMetrics {
	now := time.Now()
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := s.state.Snapshot()
	m := SystemMetrics{
		Timestamp: now,
		RobotID:   s.robotID,
		Process: ProcessStatus{
			UptimeSeconds: now.Sub(s.started).Seconds(),
			Goroutines:    runtime.NumGoroutine(),
			HeapAllocMB:   float64(mem.HeapAlloc) / (1 << 20),
		},
		Robot: RobotStatus{
			ID:                snap.ID,
			Mode:              snap.Mode,
			Ticks:             snap.Tick,
			SkippedTicks:      snap.SkippedTicks,
			InitializedAtTick: snap.InitializedAtTick,
			InboundMessages:   snap.InboundMessages,
			LastDt:            snap.LastDt,
		},
		Pools:  []PoolStatus{},
		Topics: []processing.TopicInfo{},
	}

	if s.pools != nil {
		for name, pm := range s.pools.GetPoolMetrics() {
			m.Pools = append(m.Pools, PoolStatus{Name: name, PoolMetrics: pm})
		}
		sort.Slice(m.Pools, func(i, j int) bool { return m.Pools[i].Name < m.Pools[j].Name })
	}
	if s.topics != nil {
		for _, info := range s.topics.GetTopicStats() {
			m.Topics = append(m.Topics, info)
		}
		sort.Slice(m.Topics, func(i, j int) bool { return m.Topics[i].BusTopic < m.Topics[j].BusTopic })
	}
	return m
}
