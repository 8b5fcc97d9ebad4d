package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets yaml files spell durations as "15s" or "1m30s". Bare
// numbers are read as seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Device  DeviceConfig  `yaml:"device"`
}

type ServerConfig struct {
	Host          string `yaml:"host"`
	PadPort       int    `yaml:"pad_port"`
	BroadcastPort int    `yaml:"broadcast_port"`
	AdminSocket   string `yaml:"admin_socket"`
	PIDFile       string `yaml:"pid_file"`
}

type SessionConfig struct {
	// Keepalive bounds the silence tolerated on an authenticated pad
	// connection before its slot is released. Zero disables the policy.
	Keepalive Duration `yaml:"keepalive"`
	// AuthTimeout bounds how long a fresh connection may take to send
	// its handshake.
	AuthTimeout Duration `yaml:"auth_timeout"`
}

type DeviceConfig struct {
	Name string `yaml:"name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			PadPort:       2357,
			BroadcastPort: 2358,
			AdminSocket:   "/run/virtualpad/admin.sock",
			PIDFile:       "/run/virtualpad/virtualpadd.pid",
		},
		Session: SessionConfig{
			Keepalive:   Duration(15 * time.Second),
			AuthTimeout: Duration(time.Second),
		},
		Device: DeviceConfig{
			Name: "VirtualPad",
		},
	}
}

// Load reads a yaml config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
