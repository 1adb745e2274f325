package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/CTAG07/FunMoneyGames/pkg/locale"
	"github.com/CTAG07/FunMoneyGames/pkg/templating"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP servers and the database.
type ServerConfig struct {
	ServerAddr        string   `json:"server_addr"`
	ApiAddr           string   `json:"api_addr"`
	LogLevel          string   `json:"log_level"`
	LogFormat         string   `json:"log_format"`
	TrustedProxies    []string `json:"trusted_proxies"`
	DatabaseDriver    string   `json:"database_driver"`
	DatabaseDSN       string   `json:"database_dsn"`
	ArticlesDir       string   `json:"articles_dir"`
	DefaultLocale     string   `json:"default_locale"`
	RequestTimeoutSec int      `json:"request_timeout_sec"`
	StatsEnabled      bool     `json:"stats_enabled"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server    *ServerConfig              `json:"server_config"`
	Templates *templating.TemplateConfig `json:"template_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:        ":8080",
		ApiAddr:           ":8081",
		LogLevel:          "info",
		LogFormat:         "text",
		TrustedProxies:    []string{},
		DatabaseDriver:    driverSQLite,
		DatabaseDSN:       "./data/funmoneygames.db",
		ArticlesDir:       "",
		DefaultLocale:     "en-US",
		RequestTimeoutSec: 30,
		StatsEnabled:      true,
	}
}

// Validate checks the server configuration.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServerAddr, validation.Required),
		validation.Field(&c.ApiAddr, validation.Required, validation.NotIn(c.ServerAddr).Error("must differ from server_addr")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.TrustedProxies, validation.Each(validation.By(validProxy))),
		validation.Field(&c.DatabaseDriver, validation.Required, validation.In(driverSQLite, driverMySQL)),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.DefaultLocale, validation.By(supportedLocale)),
		validation.Field(&c.RequestTimeoutSec, validation.Min(0)),
	)
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server, validation.NotNil),
		validation.Field(&c.Templates, validation.NotNil),
	)
}

func validProxy(value interface{}) error {
	s, _ := value.(string)
	if strings.Contains(s, "/") {
		if _, _, err := net.ParseCIDR(s); err != nil {
			return fmt.Errorf("invalid CIDR %q", s)
		}
		return nil
	}
	if net.ParseIP(s) == nil {
		return fmt.Errorf("invalid IP %q", s)
	}
	return nil
}

func supportedLocale(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := locale.Lookup(s); !ok {
		return fmt.Errorf("unsupported locale %q", s)
	}
	return nil
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Server:    DefaultServerConfig(),
		Templates: templating.DefaultConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// ConfigManager handles thread-safe access to configuration and derived state (trusted proxies).
type ConfigManager struct {
	config       *Config
	mu           sync.RWMutex
	trustedCIDRs []*net.IPNet
	trustedIPs   []net.IP
	configPath   string
	logger       *slog.Logger
	tm           *templating.TemplateManager
}

// NewConfigManager loads the config and initializes the manager.
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	cm := &ConfigManager{
		config:     cfg,
		configPath: path,
		// Log to stdout before the application-specific logger is set.
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})),
	}
	cm.refreshCache()

	return cm, nil
}

// SetTemplateManager registers the template manager to receive config updates.
func (cm *ConfigManager) SetTemplateManager(tm *templating.TemplateManager) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.tm = tm
	if tm != nil {
		tm.SetConfig(cm.config.Templates)
	}
}

// SetLogger replaces the bootstrap logger.
func (cm *ConfigManager) SetLogger(logger *slog.Logger) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.logger = logger
}

// Get returns a thread-safe copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	server := *cm.config.Server
	server.TrustedProxies = append(make([]string, 0, len(server.TrustedProxies)), server.TrustedProxies...)
	templates := *cm.config.Templates
	return Config{Server: &server, Templates: &templates}
}

// Update validates the configuration, applies it to the template manager, saves it to
// disk, and refreshes derived state. A template configuration that fails to load is
// rolled back and nothing is saved.
func (cm *ConfigManager) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.tm != nil {
		oldTmplConfig := cm.config.Templates

		cm.tm.SetConfig(newConfig.Templates)
		if err := cm.tm.Refresh(); err != nil {
			cm.tm.SetConfig(oldTmplConfig)
			_ = cm.tm.Refresh()
			return fmt.Errorf("template configuration rejected: %w", err)
		}
	}

	*cm.config = newConfig
	cm.refreshCache()

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err = atomic.WriteFile(cm.configPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsTrusted checks if an IP is in the trusted proxies list using the cache.
func (cm *ConfigManager) IsTrusted(ipAddr string) bool {
	parsedIP := net.ParseIP(ipAddr)
	if parsedIP == nil {
		return false
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, ipNet := range cm.trustedCIDRs {
		if ipNet.Contains(parsedIP) {
			return true
		}
	}

	for _, trustedIP := range cm.trustedIPs {
		if trustedIP.Equal(parsedIP) {
			return true
		}
	}

	return false
}

// refreshCache rebuilds the binary IP lists from the config strings.
func (cm *ConfigManager) refreshCache() {
	var cidrs []*net.IPNet
	var ips []net.IP

	for _, t := range cm.config.Server.TrustedProxies {
		if strings.Contains(t, "/") {
			_, ipNet, err := net.ParseCIDR(t)
			if err == nil {
				cidrs = append(cidrs, ipNet)
			} else {
				cm.logger.Warn("Failed to parse trusted proxy CIDR", "cidr", t, "error", err)
			}
		} else {
			ip := net.ParseIP(t)
			if ip != nil {
				ips = append(ips, ip)
			} else {
				cm.logger.Warn("Failed to parse trusted proxy IP", "ip", t)
			}
		}
	}
	cm.trustedCIDRs = cidrs
	cm.trustedIPs = ips
}
