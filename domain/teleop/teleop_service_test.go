package teleop

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/flatbuffers/simbridge/message"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/frames"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

type staticConfig struct{ cfg *config.Config }

func (s staticConfig) GetCurrentConfig() *config.Config { return s.cfg }

type captureRouter struct {
	envs []wire.Envelope
	err  error
}

func (r *captureRouter) RouteMessage(env *wire.Envelope) error {
	if r.err != nil {
		return r.err
	}
	r.envs = append(r.envs, *env)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		RobotID: "summit-xl-01",
		Teleop:  config.TeleopLimits{MaxLinear: 1, MaxAngular: 1.5},
		TopicMappings: []config.TopicMapping{
			{BusTopic: "simbridge.sim.cmd_vel", MessageType: messages.TypeTwist},
			{BusTopic: "simbridge.control.velocity", MessageType: messages.TypeTwist, Direction: config.DirectionInbound},
		},
		Defaults: config.DefaultsConfig{Priority: config.PriorityStandard, Direction: config.DirectionOutbound},
	}
}

func newService(router *captureRouter, cfg *config.Config) *TeleopService {
	return NewTeleopService(staticConfig{cfg}, router, customlog.NewWriterLogger("debug", io.Discard))
}

func TestValidate(t *testing.T) {
	limits := config.TeleopLimits{MaxLinear: 1, MaxAngular: 1.5}
	tests := []struct {
		name  string
		twist messages.Twist
		check func(t *testing.T, err error)
	}{
		{"within limits", messages.Twist{Linear: frames.Vector3{X: -1}, Angular: frames.Vector3{Z: 1.5}},
			func(t *testing.T, err error) { assert.NoError(t, err) }},
		{"nan", messages.Twist{Angular: frames.Vector3{Y: math.NaN()}},
			func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFinite) }},
		{"linear over", messages.Twist{Linear: frames.Vector3{X: -1.2}},
			func(t *testing.T, err error) {
				var le *LimitError
				require.ErrorAs(t, err, &le)
				assert.Equal(t, "linear.x", le.Field)
			}},
		{"angular over", messages.Twist{Angular: frames.Vector3{Z: 2}},
			func(t *testing.T, err error) {
				var le *LimitError
				require.ErrorAs(t, err, &le)
				assert.Equal(t, "angular.z", le.Field)
			}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Validate(tt.twist, limits))
		})
	}

	assert.NoError(t, Validate(messages.Twist{Linear: frames.Vector3{X: 50}}, config.TeleopLimits{}))
}

func TestSendTwistRoutesOnInboundTopic(t *testing.T) {
	router := &captureRouter{}
	s := newService(router, testConfig())

	twist := messages.Twist{Linear: frames.Vector3{X: 0.4}, Angular: frames.Vector3{Z: -0.3}}
	topic, err := s.SendTwist(twist)
	require.NoError(t, err)
	assert.Equal(t, "simbridge.control.velocity", topic)

	require.Len(t, router.envs, 1)
	env := router.envs[0]
	assert.Equal(t, Source, env.Source)
	assert.Equal(t, message.MessageKindTWIST, env.Kind)
	got, err := wire.DecodeTwist(env.Payload)
	require.NoError(t, err)
	assert.Equal(t, twist, got)
}

func TestSendTwistErrors(t *testing.T) {
	cfg := testConfig()
	cfg.TopicMappings = cfg.TopicMappings[:1]
	_, err := newService(&captureRouter{}, cfg).SendTwist(messages.Twist{})
	assert.ErrorIs(t, err, ErrNoInboundTopic)

	stopped := errors.New("message director is not running")
	_, err = newService(&captureRouter{err: stopped}, testConfig()).SendTwist(messages.Twist{})
	assert.ErrorIs(t, err, stopped)
}

func TestCommandHandler(t *testing.T) {
	router := &captureRouter{}
	s := newService(router, testConfig())
	app := fiber.New()
	app.Post("/api/v1/teleop/command", s.CommandHandler)

	post := func(body string) (int, map[string]interface{}) {
		req := httptest.NewRequest("POST", "/api/v1/teleop/command", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	code, out := post(`{"linear_x": 0.5, "angular_z": 0.2}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "simbridge.control.velocity", out["topic"])
	require.Len(t, router.envs, 1)

	code, _ = post(`{"linear_x": 3}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = post(`{"linear_x": 0.1, "robot_id": "other"}`)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = post(`{not json`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Len(t, router.envs, 1)
}
