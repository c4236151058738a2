// Package bridge drives the kinematic update at a fixed period when the
// bridge runs outside a simulation host, and publishes its results on the
// bus.
package bridge

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/kinematics"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

// logEvery throttles repeated publish failures.
const logEvery = 100

// Stepper advances the simulation by one tick.
type Stepper interface {
	Step() kinematics.StepResult
}

// Publisher sends an encoded envelope on a bus topic.
type Publisher interface {
	PublishMessage(topic string, data []byte) error
}

// TopicResolver lists the outbound bus topics for a message type.
type TopicResolver interface {
	OutboundTopics(messageType string) []string
}

// Loop ticks a Stepper and publishes odometry, IMU and the twist echo.
type Loop struct {
	stepper   Stepper
	publisher Publisher
	topics    TopicResolver
	source    string
	period    time.Duration
	logger    customlog.Logger

	publishFailures int
}

// NewLoop builds a loop ticking every timeStep seconds. source is stamped
// on every outbound envelope.
func NewLoop(stepper Stepper, publisher Publisher, topics TopicResolver, source string, timeStep float64, logger customlog.Logger) (*Loop, error) {
	if !(timeStep > 0) || math.IsInf(timeStep, 0) {
		return nil, fmt.Errorf("time step must be positive, got %v", timeStep)
	}
	return &Loop{
		stepper:   stepper,
		publisher: publisher,
		topics:    topics,
		source:    source,
		period:    time.Duration(timeStep * float64(time.Second)),
		logger:    logger,
	}, nil
}

// Period returns the tick interval.
func (l *Loop) Period() time.Duration {
	return l.period
}

// Run ticks until ctx is cancelled. Ticks that fall behind are dropped by
// the ticker, never queued.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.logger.Infof("Bridge loop running every %v", l.period)
	for {
		select {
		case <-ctx.Done():
			l.logger.Infof("Bridge loop stopped")
			return nil
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick runs one step and publishes its outbound messages.
func (l *Loop) Tick() kinematics.StepResult {
	res := l.stepper.Step()

	l.publish(messages.TypeOdometry, message.MessageKindODOMETRY, wire.EncodeOdometry(res.Odometry))
	l.publish(messages.TypeImu, message.MessageKindIMU, wire.EncodeImu(res.Imu))
	l.publish(messages.TypeTwist, message.MessageKindTWIST, wire.EncodeTwist(res.Twist))
	return res
}

func (l *Loop) publish(messageType string, kind message.MessageKind, payload []byte) {
	for _, topic := range l.topics.OutboundTopics(messageType) {
		env := wire.NewEnvelope(topic, l.source, kind, payload)
		if err := l.publisher.PublishMessage(topic, wire.EncodeEnvelope(env)); err != nil {
			if l.publishFailures%logEvery == 0 {
				l.logger.Warnf("Publishing %s on '%s' failed (%d failures so far): %v",
					kind, topic, l.publishFailures+1, err)
			}
			l.publishFailures++
		}
	}
}
