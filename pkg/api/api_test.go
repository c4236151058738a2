package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/kinematics"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
	"github.com/SofaDefrost/prefab.MobileTrunk/services"
)

const bridgeYAML = `version: "1.0"
config_id: "api-test"
robot_id: "summit-xl-01"
robot:
  wheel_radius: 0.25
simulation:
  time_step: 0.02
`

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("debug", io.Discard)
}

func newConfigApp(t *testing.T) (*fiber.App, services.BridgeConfigService, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bridgeYAML), 0644))
	svc, err := services.NewBridgeConfigService(path, testLogger())
	require.NoError(t, err)

	app := fiber.New()
	RegisterConfigRoutes(app, svc, testLogger())
	return app, svc, path
}

func put(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("PUT", "/api/v1/config/bridge", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, "application/x-yaml")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestGetBridgeConfig(t *testing.T) {
	app, _, _ := newConfigApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/config/bridge", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-yaml", resp.Header.Get(fiber.HeaderContentType))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, bridgeYAML, string(body))
}

func TestUpdateBridgeConfig(t *testing.T) {
	app, svc, path := newConfigApp(t)

	updated := strings.Replace(bridgeYAML, "api-test", "api-test-2", 1)
	code, out := put(t, app, updated)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "api-test-2", out["config_id"])
	assert.Equal(t, "api-test-2", svc.GetCurrentConfig().ConfigID)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, updated, string(onDisk))
}

func TestUpdateBridgeConfigRejects(t *testing.T) {
	app, svc, _ := newConfigApp(t)

	code, out := put(t, app, strings.Replace(bridgeYAML, "wheel_radius: 0.25", "wheel_radius: -1", 1))
	assert.Equal(t, fiber.StatusBadRequest, code)
	require.Contains(t, out, "problems")
	assert.NotEmpty(t, out["problems"])

	code, _ = put(t, app, "robot: [")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = put(t, app, "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	assert.Equal(t, "api-test", svc.GetCurrentConfig().ConfigID)
}

func TestStateRoute(t *testing.T) {
	state := kinematics.NewRobotState()
	app := fiber.New()
	RegisterStateRoutes(app, state, testLogger())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/state", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap struct {
		ID   string `json:"id"`
		Mode string `json:"mode"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, state.ID.String(), snap.ID)
	assert.Equal(t, "UNINITIALIZED", snap.Mode)
}

type recordingSender struct {
	got []messages.Twist
	err error
}

func (s *recordingSender) SendTwist(twist messages.Twist) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.got = append(s.got, twist)
	return "simbridge.control.velocity", nil
}

func TestHandleControlMessage(t *testing.T) {
	sender := &recordingSender{}

	reply := handleControlMessage([]byte(`{"linear":{"x":0.3},"angular":{"z":-0.1}}`), sender, testLogger())
	assert.Equal(t, ControlReply{Status: "accepted", Topic: "simbridge.control.velocity"}, reply)
	require.Len(t, sender.got, 1)
	assert.Equal(t, 0.3, sender.got[0].Linear.X)
	assert.Equal(t, -0.1, sender.got[0].Angular.Z)
	assert.Zero(t, sender.got[0].Linear.Y)

	reply = handleControlMessage([]byte(`{"linear":`), sender, testLogger())
	assert.Equal(t, "rejected", reply.Status)
	assert.Contains(t, reply.Error, "malformed twist")

	sender.err = errors.New("linear.x 3.000 exceeds limit 1.000")
	reply = handleControlMessage([]byte(`{"linear":{"x":3}}`), sender, testLogger())
	assert.Equal(t, ControlReply{Status: "rejected", Error: sender.err.Error()}, reply)
	assert.Len(t, sender.got, 1)
}

var _ StateSource = (*kinematics.RobotState)(nil)
