package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/kinematics"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/services"
)

// ConfigHandler holds dependencies for configuration API endpoints.
type ConfigHandler struct {
	configService services.BridgeConfigService
	logger        customlog.Logger
}

// NewConfigHandler creates a new handler for configuration endpoints.
func NewConfigHandler(configService services.BridgeConfigService, logger customlog.Logger) *ConfigHandler {
	if configService == nil {
		panic("ConfigService cannot be nil in NewConfigHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewConfigHandler")
	}
	return &ConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// RegisterConfigRoutes registers the configuration API endpoints with the Fiber app.
func RegisterConfigRoutes(app *fiber.App, configService services.BridgeConfigService, logger customlog.Logger) {
	h := NewConfigHandler(configService, logger)

	apiGroup := app.Group("/api/v1/config")
	apiGroup.Get("/bridge", h.handleGetBridgeConfig)
	apiGroup.Put("/bridge", h.handleUpdateBridgeConfig)

	logger.Infof("Registered bridge configuration API endpoints under /api/v1/config")
}

// handleGetBridgeConfig returns the bridge config file as YAML.
func (h *ConfigHandler) handleGetBridgeConfig(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/config/bridge")
	yamlData, err := h.configService.GetCurrentConfigYAML()
	if err != nil {
		h.logger.Errorf("Failed to get current bridge config YAML: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to retrieve configuration: %v", err),
		})
	}

	if len(yamlData) == 0 {
		h.logger.Warnf("Bridge config file is empty.")
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "Bridge configuration not found or not yet set.",
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}

// handleUpdateBridgeConfig validates, persists and applies a new bridge config.
func (h *ConfigHandler) handleUpdateBridgeConfig(c *fiber.Ctx) error {
	h.logger.Debugf("Handling PUT request for /api/v1/config/bridge")

	switch ct := c.Get(fiber.HeaderContentType); ct {
	case "application/x-yaml", "application/yaml", "text/yaml":
	default:
		h.logger.Warnf("Received PUT request with unexpected Content-Type '%s', parsing as YAML anyway", ct)
	}

	newConfigYAML := c.Body()
	if len(newConfigYAML) == 0 {
		h.logger.Errorf("Received empty body in PUT request for bridge config update.")
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body cannot be empty.",
		})
	}

	if err := h.configService.UpdateConfig(newConfigYAML); err != nil {
		h.logger.Errorf("Failed to update bridge configuration: %v", err)
		var ve *config.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error":    "Configuration update failed validation",
				"problems": ve.Problems,
			})
		case errors.Is(err, services.ErrInvalidConfig):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Configuration update failed: %v", err),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Internal server error during configuration update: %v", err),
			})
		}
	}

	cfg := h.configService.GetCurrentConfig()
	h.logger.Infof("Successfully processed PUT request to update bridge configuration.")
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   "Bridge configuration updated. Topic routing reloaded; robot parameters apply on restart.",
		"config_id": cfg.ConfigID,
		"version":   cfg.Version,
	})
}

// StateSource exposes the last tick snapshot.
type StateSource interface {
	Snapshot() kinematics.Snapshot
}

// RegisterStateRoutes exposes the robot state snapshot.
func RegisterStateRoutes(app *fiber.App, state StateSource, logger customlog.Logger) {
	app.Get("/api/v1/state", func(c *fiber.Ctx) error {
		return c.JSON(state.Snapshot())
	})
	logger.Infof("Registered state API endpoint at /api/v1/state")
}
