package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/SofaDefrost/prefab.MobileTrunk/domain/diagnostic"
	"github.com/SofaDefrost/prefab.MobileTrunk/domain/teleop"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/api"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/bridge"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/kinematics"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/processing"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/zeromq"
	"github.com/SofaDefrost/prefab.MobileTrunk/services"
)

func main() {
	configDir := flag.String("config-dir", "config", "directory holding "+config.BootstrapFilename)
	flag.Parse()

	bootstrap, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	log, err := customlog.NewLogrusLogger(bootstrap.Logging.Level, bootstrap.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	log.Infof("Starting Summit XL simulation bridge (config dir %s)", *configDir)

	configService, err := services.NewBridgeConfigService(bootstrap.BridgeConfigPath(), log.WithField("component", "config"))
	if err != nil {
		log.Fatalf("Failed to create bridge config service: %v", err)
	}
	cfg := configService.GetCurrentConfig()
	if cfg == nil {
		log.Fatalf("No valid bridge configuration at %s", bootstrap.BridgeConfigPath())
	}
	log.Infof("Robot %s: scale=%v wheel_radius=%v time_step=%v control_mode=%s",
		cfg.RobotID, cfg.Robot.Scale, cfg.Robot.WheelRadius, cfg.Simulation.TimeStep, cfg.Simulation.ControlMode)

	// Robot state and kinematic step
	state := kinematics.NewRobotState()
	controller, err := kinematics.NewController(kinematics.Params{
		Scale:       cfg.Robot.Scale,
		WheelRadius: cfg.Robot.WheelRadius,
	}, state, log.WithField("component", "kinematics"))
	if err != nil {
		log.Fatalf("Invalid robot parameters: %v", err)
	}

	// Inbound pipeline: bus -> director -> decoder -> robot state
	registry := processing.NewTopicRegistry(log.WithField("component", "registry"))
	registry.LoadFromConfig(cfg)

	director := processing.NewMessageDirector(log.WithField("component", "director"), registry,
		&processing.DirectorOptions{DefaultQueueSize: bootstrap.Processing.QueueSize})
	director.Initialize(
		bootstrap.Processing.HighPriorityWorkers,
		bootstrap.Processing.StandardPriorityWorkers,
		bootstrap.Processing.LowPriorityWorkers,
	)
	director.SetProcessor(processing.NewInboundProcessor(log, registry).CreateProcessorFunc())
	director.SetResultHandler(processing.NewStateResultHandler(log, state).CreateHandlerFunc())
	director.Start()

	var inboundTopics []string
	for _, m := range cfg.GetTopicMappingsByDirection(config.DirectionInbound) {
		inboundTopics = append(inboundTopics, m.BusTopic)
	}

	zmqService, err := zeromq.NewZeroMQService(bootstrap.ZeroMQ, inboundTopics, director, log.WithField("component", "zeromq"))
	if err != nil {
		log.Fatalf("Failed to create ZeroMQ service: %v", err)
	}
	configPublisher := zeromq.RegisterBridgeHandlers(zmqService, configService, state, registry, director, log)
	configService.SetPublisher(configPublisher)
	configService.OnUpdate(func(newCfg *config.Config) {
		registry.LoadFromConfig(newCfg)
		if newCfg.Robot != cfg.Robot || newCfg.Simulation != cfg.Simulation {
			log.Warnf("Robot or simulation parameters changed; restart the bridge to apply them")
		}
	})

	if err := zmqService.Start(); err != nil {
		log.Fatalf("Failed to start ZeroMQ service: %v", err)
	}

	// HTTP API
	app := fiber.New(fiber.Config{
		AppName:               "Summit XL Sim Bridge",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(logger.New())
	app.Use(recover.New())

	teleopService := teleop.NewTeleopService(configService, director, log)
	diagnosticService := diagnostic.NewDiagnosticService(cfg.RobotID, state, director, registry)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "online",
			"service":  "summit-xl sim bridge",
			"robot_id": cfg.RobotID,
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api.RegisterConfigRoutes(app, configService, log)
	api.RegisterStateRoutes(app, state, log)
	app.Get("/api/v1/diagnostics", diagnosticService.GetMetricsHandler)
	app.Post("/api/v1/teleop/command", teleopService.CommandHandler)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		api.ControlWebSocketHandler(conn, log.WithField("component", "ws"), teleopService)
	}))

	go func() {
		port := bootstrap.Server.HTTPPort
		log.Infof("HTTP server starting on port %d", port)
		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Errorf("HTTP server stopped: %v", err)
		}
	}()

	// Standalone tick loop
	ctx, cancel := context.WithCancel(context.Background())
	loop, err := bridge.NewLoop(controller, zmqService, registry, state.ID.String(), cfg.Simulation.TimeStep,
		log.WithField("component", "loop"))
	if err != nil {
		log.Fatalf("Failed to create bridge loop: %v", err)
	}
	var loopWG sync.WaitGroup
	loopWG.Add(1)
	go func() {
		defer loopWG.Done()
		if err := loop.Run(ctx); err != nil {
			log.Errorf("Bridge loop exited: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("Shutting down bridge...")

	cancel()
	loopWG.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("HTTP server forced to shutdown: %v", err)
	}

	zmqService.Stop()
	director.Stop()
	log.Infof("Bridge exited properly")
}

// Custom error handler
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
