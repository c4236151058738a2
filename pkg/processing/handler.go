package processing

import (
	"fmt"

	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

// StateSink receives decoded inbound messages. kinematics.RobotState
// implements it.
type StateSink interface {
	SetVelocityCommand(cmd messages.Twist)
	SetOdometry(odom messages.Odometry)
}

// StateResultHandler applies processed inbound messages to a StateSink.
type StateResultHandler struct {
	logger customlog.Logger
	sink   StateSink
}

// NewStateResultHandler creates a new result handler writing to sink
func NewStateResultHandler(logger customlog.Logger, sink StateSink) *StateResultHandler {
	return &StateResultHandler{
		logger: logger,
		sink:   sink,
	}
}

// HandleResult handles a processed message result
func (h *StateResultHandler) HandleResult(result *ProcessResult) error {
	if result.Error != nil {
		h.logger.Warnf("Dropping message for topic '%s': %v", result.Topic, result.Error)
		return result.Error
	}

	switch msg := result.Data.(type) {
	case messages.Twist:
		h.sink.SetVelocityCommand(msg)
		h.logger.Debugf("Velocity command from '%s': linear.x=%.3f angular.z=%.3f",
			result.Topic, msg.Linear.X, msg.Angular.Z)
	case messages.Odometry:
		h.sink.SetOdometry(msg)
		h.logger.Debugf("Odometry from '%s' at %d.%09d", result.Topic, msg.Stamp.Sec, msg.Stamp.Nanosec)
	default:
		err := fmt.Errorf("unexpected result type %T for topic '%s'", result.Data, result.Topic)
		h.logger.Errorf("%v", err)
		return err
	}
	return nil
}

// CreateHandlerFunc creates a ResultHandler function for the ProcessingPool
func (h *StateResultHandler) CreateHandlerFunc() ResultHandler {
	return func(processResult *ProcessResult) {
		if processResult == nil {
			h.logger.Errorf("Received nil ProcessResult")
			return
		}
		_ = h.HandleResult(processResult)
	}
}
