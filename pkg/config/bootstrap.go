package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BootstrapFilename is read from the config directory at startup.
const BootstrapFilename = "simbridge_config.yaml"

// BootstrapConfig holds the process-level settings loaded from simbridge_config.yaml
type BootstrapConfig struct {
	Logging    LoggingConfig         `yaml:"logging"`
	Server     BootstrapServerConfig `yaml:"server"`
	ZeroMQ     ZeroMQBootstrap       `yaml:"zeromq"`
	Data       DataConfig            `yaml:"data"`
	Processing ProcessingConfig      `yaml:"processing"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// BootstrapServerConfig holds HTTP server settings
type BootstrapServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// ZeroMQBootstrap holds the bus endpoints.
type ZeroMQBootstrap struct {
	// REP socket answering CONFIG_REQUEST / STATE_REQUEST and raw envelopes.
	RequestBindAddress string `yaml:"request_bind_address"`
	// PUB socket carrying outbound odometry, IMU and twist echo.
	PublishBindAddress string `yaml:"publish_bind_address"`
	// SUB socket connected to the gateway publishing inbound topics.
	SubscribeConnectAddress string `yaml:"subscribe_connect_address"`
	MessageBufferSize       int    `yaml:"message_buffer_size"`
	ReconnectIntervalMs     int    `yaml:"reconnect_interval_ms"`
}

// ProcessingConfig sizes the inbound worker pools. Inbound commands are
// latest-wins, so more than one worker per pool may reorder them.
type ProcessingConfig struct {
	HighPriorityWorkers     int `yaml:"high_priority_workers"`
	StandardPriorityWorkers int `yaml:"standard_priority_workers"`
	LowPriorityWorkers      int `yaml:"low_priority_workers"`
	QueueSize               int `yaml:"queue_size"`
}

// DataConfig holds data directory settings from bootstrap
type DataConfig struct {
	Directory            string `yaml:"directory"`
	BridgeConfigFilename string `yaml:"bridge_config_file"`
}

// BridgeConfigPath joins the data directory and the bridge config file.
func (b *BootstrapConfig) BridgeConfigPath() string {
	return filepath.Join(b.Data.Directory, b.Data.BridgeConfigFilename)
}

// LoadBootstrapConfig loads the bootstrap configuration from simbridge_config.yaml
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, BootstrapFilename)

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if bootstrapCfg.ZeroMQ.RequestBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.request_bind_address")
	}
	if bootstrapCfg.ZeroMQ.PublishBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.publish_bind_address")
	}
	if bootstrapCfg.Data.Directory == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.directory")
	}
	if bootstrapCfg.Data.BridgeConfigFilename == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.bridge_config_file")
	}

	bootstrapCfg.applyDefaults()
	return &bootstrapCfg, nil
}

func (b *BootstrapConfig) applyDefaults() {
	if b.Logging.Level == "" {
		b.Logging.Level = "info"
	}
	if b.Server.HTTPPort == 0 {
		b.Server.HTTPPort = 8080
	}
	p := &b.Processing
	for _, n := range []*int{&p.HighPriorityWorkers, &p.StandardPriorityWorkers, &p.LowPriorityWorkers} {
		if *n <= 0 {
			*n = 1
		}
	}
	if p.QueueSize <= 0 {
		p.QueueSize = 100
	}
}
