package teleop

import (
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

// Source is stamped on envelopes created from operator commands.
const Source = "teleop"

var (
	// ErrNotFinite rejects commands carrying NaN or infinite components.
	ErrNotFinite = errors.New("command has non-finite components")
	// ErrNoInboundTopic means no INBOUND Twist mapping is configured.
	ErrNoInboundTopic = errors.New("no inbound twist topic configured")
)

// LimitError reports a component above its configured limit.
type LimitError struct {
	Field string
	Value float64
	Limit float64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s %.3f exceeds limit %.3f", e.Field, e.Value, e.Limit)
}

// Command represents a teleoperation command
type Command struct {
	LinearX  float64 `json:"linear_x"`
	LinearY  float64 `json:"linear_y"`
	LinearZ  float64 `json:"linear_z"`
	AngularX float64 `json:"angular_x"`
	AngularY float64 `json:"angular_y"`
	AngularZ float64 `json:"angular_z"`
	RobotID  string  `json:"robot_id"`
}

// Twist converts the flat command to the external-frame message.
func (c Command) Twist() messages.Twist {
	return messages.Twist{
		Linear:  frames.Vector3{X: c.LinearX, Y: c.LinearY, Z: c.LinearZ},
		Angular: frames.Vector3{X: c.AngularX, Y: c.AngularY, Z: c.AngularZ},
	}
}

// ConfigSource supplies the current bridge configuration.
type ConfigSource interface {
	GetCurrentConfig() *config.Config
}

// Router accepts inbound envelopes.
type Router interface {
	RouteMessage(env *wire.Envelope) error
}

// TeleopService validates operator commands and feeds them through the
// inbound path used by the bus.
type TeleopService struct {
	config ConfigSource
	router Router
	logger customlog.Logger
}

// NewTeleopService creates a new teleop service instance
func NewTeleopService(cfg ConfigSource, router Router, logger customlog.Logger) *TeleopService {
	return &TeleopService{
		config: cfg,
		router: router,
		logger: logger.WithField("service", "teleop"),
	}
}

// CommandHandler processes incoming teleop commands
func (s *TeleopService) CommandHandler(c *fiber.Ctx) error {
	var cmd Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if robotID := s.config.GetCurrentConfig().RobotID; cmd.RobotID != "" && cmd.RobotID != robotID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("unknown robot '%s'", cmd.RobotID),
		})
	}

	topic, err := s.SendTwist(cmd.Twist())
	if err != nil {
		var limitErr *LimitError
		if errors.Is(err, ErrNotFinite) || errors.As(err, &limitErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		s.logger.Errorf("Failed to send teleop command: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "command accepted",
		"topic":   topic,
		"command": cmd,
	})
}

// ValidateCommand checks that every component is finite and that linear.x
// and angular.z are within the configured limits.
func (s *TeleopService) ValidateCommand(twist messages.Twist) error {
	return Validate(twist, s.config.GetCurrentConfig().Teleop)
}

// Validate checks twist against limits. A zero limit is not enforced.
func Validate(twist messages.Twist, limits config.TeleopLimits) error {
	if !twist.IsFinite() {
		return ErrNotFinite
	}
	if limits.MaxLinear > 0 && math.Abs(twist.Linear.X) > limits.MaxLinear {
		return &LimitError{Field: "linear.x", Value: twist.Linear.X, Limit: limits.MaxLinear}
	}
	if limits.MaxAngular > 0 && math.Abs(twist.Angular.Z) > limits.MaxAngular {
		return &LimitError{Field: "angular.z", Value: twist.Angular.Z, Limit: limits.MaxAngular}
	}
	return nil
}

// SendTwist validates twist and routes it on the first inbound Twist topic.
// It returns the topic used.
func (s *TeleopService) SendTwist(twist messages.Twist) (string, error) {
	if err := s.ValidateCommand(twist); err != nil {
		return "", err
	}

	topic, err := s.inboundTopic()
	if err != nil {
		return "", err
	}

	env := wire.NewEnvelope(topic, Source, message.MessageKindTWIST, wire.EncodeTwist(twist))
	if err := s.router.RouteMessage(&env); err != nil {
		return "", fmt.Errorf("routing command on '%s': %w", topic, err)
	}
	s.logger.Debugf("Routed teleop command linear.x=%.2f angular.z=%.2f on %s",
		twist.Linear.X, twist.Angular.Z, topic)
	return topic, nil
}

func (s *TeleopService) inboundTopic() (string, error) {
	for _, m := range s.config.GetCurrentConfig().GetTopicMappingsByDirection(config.DirectionInbound) {
		if m.MessageType == messages.TypeTwist {
			return m.BusTopic, nil
		}
	}
	return "", ErrNoInboundTopic
}
