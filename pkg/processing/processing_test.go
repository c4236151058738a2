package processing

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

const (
	velocityTopic  = "simbridge.control.velocity"
	robotOdomTopic = "simbridge.robot.odometry"
	simOdomTopic   = "simbridge.sim.odometry"
)

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("debug", io.Discard)
}

func testConfig() *config.Config {
	return &config.Config{
		TopicMappings: []config.TopicMapping{
			{RosTopic: "/cmd_vel", BusTopic: velocityTopic, MessageType: messages.TypeTwist,
				Priority: config.PriorityHigh, Direction: config.DirectionInbound},
			{RosTopic: "/summit_xl/odom", BusTopic: robotOdomTopic, MessageType: messages.TypeOdometry,
				Direction: config.DirectionInbound},
			{RosTopic: "/summit_xl_sim/odom", BusTopic: simOdomTopic, MessageType: messages.TypeOdometry},
			{RosTopic: "/summit_xl_sim/odom2", BusTopic: simOdomTopic + ".b", MessageType: messages.TypeOdometry},
		},
		Defaults: config.DefaultsConfig{Priority: config.PriorityStandard, Direction: config.DirectionOutbound},
	}
}

func testRegistry() *TopicRegistry {
	r := NewTopicRegistry(testLogger())
	r.LoadFromConfig(testConfig())
	return r
}

type fakeSink struct {
	mu       sync.Mutex
	commands []messages.Twist
	odoms    []messages.Odometry
	got      chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{got: make(chan struct{}, 16)}
}

func (s *fakeSink) SetVelocityCommand(cmd messages.Twist) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *fakeSink) SetOdometry(odom messages.Odometry) {
	s.mu.Lock()
	s.odoms = append(s.odoms, odom)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *fakeSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sink")
	}
}

func twistEnvelope(topic string, twist messages.Twist) *wire.Envelope {
	env := wire.NewEnvelope(topic, "test", message.MessageKindTWIST, wire.EncodeTwist(twist))
	return &env
}

func TestRegistryLoadAppliesDefaults(t *testing.T) {
	r := testRegistry()

	info, ok := r.GetTopicInfo(simOdomTopic)
	require.True(t, ok)
	assert.Equal(t, config.DirectionOutbound, info.Direction)
	assert.Equal(t, config.PriorityStandard, info.Priority)
	assert.Equal(t, "/summit_xl_sim/odom", info.RosTopic)

	p, ok := r.GetTopicPriority(velocityTopic)
	require.True(t, ok)
	assert.Equal(t, config.PriorityHigh, p)

	_, ok = r.GetMessageType("simbridge.unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{simOdomTopic, simOdomTopic + ".b"}, r.OutboundTopics(messages.TypeOdometry))
	assert.Empty(t, r.OutboundTopics(messages.TypeImu))
	assert.Len(t, r.GetAllTopics(), 4)
}

func TestRegistryStats(t *testing.T) {
	r := testRegistry()
	r.UpdateTopicStats(velocityTopic, 10)
	r.UpdateTopicStats(velocityTopic, 20)
	r.UpdateTopicStats("simbridge.adhoc", 5)

	stats := r.GetTopicStats()
	assert.EqualValues(t, 2, stats[velocityTopic].StatCount)
	assert.EqualValues(t, 20, stats[velocityTopic].LastReceived)
	assert.Equal(t, config.DirectionInbound, stats["simbridge.adhoc"].Direction)

	// stats survive a reload for topics still mapped
	r.LoadFromConfig(testConfig())
	info, _ := r.GetTopicInfo(velocityTopic)
	assert.EqualValues(t, 2, info.StatCount)
	_, ok := r.GetTopicInfo("simbridge.adhoc")
	assert.False(t, ok)
}

func TestProcessorDecodesByMappedType(t *testing.T) {
	p := NewInboundProcessor(testLogger(), testRegistry())

	twist := messages.Twist{Linear: frames.Vector3{X: 0.3}, Angular: frames.Vector3{Z: -0.1}}
	got, err := p.ProcessMessage(twistEnvelope(velocityTopic, twist))
	require.NoError(t, err)
	assert.Equal(t, twist, got)

	odom := messages.Odometry{
		Stamp: frames.Timestamp{Sec: 3},
		Pose:  frames.Pose{Position: frames.Vector3{X: 1}, Orientation: frames.Identity},
	}
	// kind left unset: the mapping decides
	env := wire.NewEnvelope(robotOdomTopic, "", message.MessageKindUNKNOWN, wire.EncodeOdometry(odom))
	got, err = p.ProcessMessage(&env)
	require.NoError(t, err)
	assert.Equal(t, odom, got)
}

func TestProcessorFallsBackToEnvelopeKind(t *testing.T) {
	p := NewInboundProcessor(testLogger(), testRegistry())
	twist := messages.Twist{Angular: frames.Vector3{Z: 1}}

	got, err := p.ProcessMessage(twistEnvelope("simbridge.teleop.adhoc", twist))
	require.NoError(t, err)
	assert.Equal(t, twist, got)
}

func TestProcessorRejects(t *testing.T) {
	p := NewInboundProcessor(testLogger(), testRegistry())

	_, err := p.ProcessMessage(twistEnvelope(simOdomTopic, messages.Twist{}))
	assert.ErrorIs(t, err, ErrWrongDirection)

	env := wire.NewEnvelope("simbridge.other", "", message.MessageKindIMU, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	_, err = p.ProcessMessage(&env)
	assert.ErrorIs(t, err, ErrUnroutable)

	env = wire.NewEnvelope(velocityTopic, "", message.MessageKindTWIST, nil)
	_, err = p.ProcessMessage(&env)
	assert.Error(t, err)

	env = wire.NewEnvelope(velocityTopic, "", message.MessageKindTWIST, []byte{1, 2})
	_, err = p.ProcessMessage(&env)
	assert.ErrorIs(t, err, wire.ErrTruncated)
}

func TestResultHandlerAppliesToSink(t *testing.T) {
	sink := newFakeSink()
	h := NewStateResultHandler(testLogger(), sink)

	require.NoError(t, h.HandleResult(&ProcessResult{Topic: velocityTopic, Data: messages.Twist{Linear: frames.Vector3{X: 1}}}))
	require.NoError(t, h.HandleResult(&ProcessResult{Topic: robotOdomTopic, Data: messages.Odometry{}}))
	assert.Error(t, h.HandleResult(&ProcessResult{Topic: "x", Data: "nope"}))
	assert.Error(t, h.HandleResult(&ProcessResult{Topic: "x", Error: ErrUnroutable}))

	assert.Len(t, sink.commands, 1)
	assert.Len(t, sink.odoms, 1)
}

func TestDirectorRoutesToSink(t *testing.T) {
	registry := testRegistry()
	sink := newFakeSink()
	d := NewMessageDirector(testLogger(), registry, &DirectorOptions{DefaultQueueSize: 4})
	d.Initialize(1, 1, 1)
	d.SetProcessor(NewInboundProcessor(testLogger(), registry).CreateProcessorFunc())
	d.SetResultHandler(NewStateResultHandler(testLogger(), sink).CreateHandlerFunc())

	twist := messages.Twist{Linear: frames.Vector3{X: 0.5}}
	assert.Error(t, d.RouteMessage(twistEnvelope(velocityTopic, twist)), "not started")

	d.Start()
	require.NoError(t, d.RouteMessage(twistEnvelope(velocityTopic, twist)))
	sink.wait(t)
	d.Stop()

	sink.mu.Lock()
	assert.Equal(t, []messages.Twist{twist}, sink.commands)
	sink.mu.Unlock()

	metrics := d.GetPoolMetrics()
	assert.EqualValues(t, 1, metrics[config.PriorityHigh].ProcessedCount)
	assert.EqualValues(t, 0, metrics[config.PriorityStandard].ProcessedCount)

	info, _ := registry.GetTopicInfo(velocityTopic)
	assert.EqualValues(t, 1, info.StatCount)
}

func TestPoolDropsWhenFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	pool := NewProcessingPool("TEST", 1, 1, testLogger())
	pool.SetProcessor(func(env *wire.Envelope) (interface{}, error) {
		started <- struct{}{}
		<-release
		return nil, nil
	})

	env := twistEnvelope(velocityTopic, messages.Twist{})
	assert.False(t, pool.ProcessMessage(env), "stopped pool must reject")

	pool.Start()
	require.True(t, pool.ProcessMessage(env))
	<-started // worker is busy
	require.True(t, pool.ProcessMessage(env))
	assert.False(t, pool.ProcessMessage(env))

	close(release)
	<-started
	pool.Stop()

	m := pool.GetMetrics()
	assert.EqualValues(t, 2, m.ProcessedCount)
	assert.EqualValues(t, 1, m.DroppedCount)
	assert.Equal(t, 1, pool.GetQueueCapacity())
}
