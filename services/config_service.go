package services

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
)

// ErrInvalidConfig wraps every rejected configuration update.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigPublisher defines the interface for publishing configuration updates.
type ConfigPublisher interface {
	PublishConfigUpdatedNotification() error
}

// BridgeConfigService manages the operational bridge configuration.
type BridgeConfigService interface {
	LoadConfig() error
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	UpdateConfig(newConfigYAML []byte) error
	PersistConfig(yamlData []byte) error
	SetPublisher(p ConfigPublisher)
	// OnUpdate registers fn to run with every newly applied config.
	OnUpdate(fn func(*config.Config))
}

type bridgeConfigService struct {
	operationalConfigPath string
	logger                customlog.Logger
	configPublisher       ConfigPublisher
	currentConfig         *config.Config
	listeners             []func(*config.Config)
	mu                    sync.RWMutex
}

// NewBridgeConfigService creates the service and attempts an initial load.
// A failed load is logged and leaves the config nil so it can be supplied
// later through UpdateConfig.
func NewBridgeConfigService(operationalConfigPath string, logger customlog.Logger) (BridgeConfigService, error) {
	if operationalConfigPath == "" {
		return nil, fmt.Errorf("operational configuration path cannot be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	service := &bridgeConfigService{
		operationalConfigPath: operationalConfigPath,
		logger:                logger,
	}

	if err := service.LoadConfig(); err != nil {
		logger.Warnf("Initial load of bridge config '%s' failed: %v. Service created, but config is nil.", operationalConfigPath, err)
		return service, nil
	}

	logger.Infof("BridgeConfigService initialized for path: %s", operationalConfigPath)
	return service, nil
}

// LoadConfig reads and validates the config file. On failure the current
// config is cleared.
func (s *bridgeConfigService) LoadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Loading bridge configuration from: %s", s.operationalConfigPath)
	cfg, err := config.LoadConfig(s.operationalConfigPath)
	if err != nil {
		s.logger.Errorf("Error loading bridge config: %v", err)
		s.currentConfig = nil
		return err
	}

	s.currentConfig = cfg
	s.logger.Infof("Loaded bridge configuration ID: %s, Version: %s", cfg.ConfigID, cfg.Version)
	return nil
}

// GetCurrentConfig returns the active configuration. Callers must treat it
// as read-only.
func (s *bridgeConfigService) GetCurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML returns the config file as stored on disk.
func (s *bridgeConfigService) GetCurrentConfigYAML() ([]byte, error) {
	s.logger.Debugf("Reading raw bridge configuration YAML from: %s", s.operationalConfigPath)
	data, err := os.ReadFile(s.operationalConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading operational config file '%s': %w", s.operationalConfigPath, err)
	}
	return data, nil
}

// UpdateConfig validates newConfigYAML, persists it, makes it current and
// notifies listeners and the publisher. Rejected input returns an error
// wrapping ErrInvalidConfig; validation failures also satisfy
// config.IsValidation.
func (s *bridgeConfigService) UpdateConfig(newConfigYAML []byte) error {
	newCfg, err := config.ParseConfig(newConfigYAML)
	if err != nil {
		s.logger.Warnf("Rejected bridge configuration update: %v", err)
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s.mu.Lock()
	if err := s.persistConfigUnlocked(newConfigYAML); err != nil {
		s.mu.Unlock()
		return err
	}

	oldID := "N/A"
	if s.currentConfig != nil {
		oldID = s.currentConfig.ConfigID
	}
	s.currentConfig = newCfg
	listeners := append([]func(*config.Config){}, s.listeners...)
	publisher := s.configPublisher
	s.mu.Unlock()

	s.logger.Infof("Updated bridge configuration. ID %s -> %s, Version: %s", oldID, newCfg.ConfigID, newCfg.Version)

	for _, fn := range listeners {
		fn(newCfg)
	}

	if publisher != nil {
		go func() {
			if err := publisher.PublishConfigUpdatedNotification(); err != nil {
				s.logger.Warnf("Failed to publish config update notification: %v", err)
			}
		}()
	} else {
		s.logger.Infof("ConfigPublisher not configured, skipping update notification.")
	}

	return nil
}

// PersistConfig writes the given YAML data to the operational config file path.
func (s *bridgeConfigService) PersistConfig(yamlData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistConfigUnlocked(yamlData)
}

func (s *bridgeConfigService) persistConfigUnlocked(yamlData []byte) error {
	s.logger.Infof("Persisting bridge configuration to: %s", s.operationalConfigPath)
	if err := os.WriteFile(s.operationalConfigPath, yamlData, 0644); err != nil {
		s.logger.Errorf("Error writing operational config file '%s': %v", s.operationalConfigPath, err)
		return fmt.Errorf("error writing operational config file '%s': %w", s.operationalConfigPath, err)
	}
	return nil
}

// SetPublisher allows injecting the ConfigPublisher after initialization.
func (s *bridgeConfigService) SetPublisher(p ConfigPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configPublisher = p
}

func (s *bridgeConfigService) OnUpdate(fn func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
