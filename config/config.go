// Package config loads the service configuration from YAML and TASKHUB_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	logcfg "github.com/satvikmishra44/taskhub/logging/logger/config"
	"github.com/satvikmishra44/taskhub/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TASKHUB_AUTH_JWT_SECRET
const EnvPrefix = "TASKHUB"

// Config represents the configuration implementation.
type Config struct {
	AppName    string
	RunMode    string
	Server     *Server
	Logger     *logcfg.Config
	Data       *Data
	Auth       *Auth
	Storage    *storage.Config
	Attachment *Attachment
	Observes   *Observes
	Viper      *viper.Viper

	path string
	mu   sync.Mutex
}

// LoadConfig loads the configuration from configPath, or from config.yaml in
// the usual locations when configPath is empty. A missing default file is
// not an error so the service can run from environment variables alone.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.taskhub")
		v.AddConfigPath("/etc/taskhub")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := build(v)
	cfg.path = configPath
	return cfg, nil
}

func build(v *viper.Viper) *Config {
	return &Config{
		AppName:    v.GetString("app_name"),
		RunMode:    v.GetString("run_mode"),
		Server:     getServerConfig(v),
		Logger:     logcfg.GetConfig(v),
		Data:       getDataConfig(v),
		Auth:       getAuth(v),
		Storage:    storage.GetConfig(v),
		Attachment: getAttachmentConfig(v),
		Observes:   getObservesConfig(v),
		Viper:      v,
	}
}

// Validate checks settings the service cannot start without
func (c *Config) Validate() error {
	if c.Auth == nil || c.Auth.JWT == nil || c.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret is required")
	}
	switch c.Data.Driver {
	case DriverMongoDB:
		if c.Data.MongoDB.URI == "" {
			return errors.New("data.mongodb.uri is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported data driver: %s", c.Data.Driver)
	}
	if c.Attachment.MaxFiles <= 0 {
		return errors.New("attachment.max_files must be positive")
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return nil
}

// Watch re-reads the configuration file when it changes and passes the new
// configuration to callback. Invalid updates are reported through onError.
func (c *Config) Watch(callback func(*Config), onError func(error)) {
	c.Viper.OnConfigChange(func(e fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if err := c.Viper.ReadInConfig(); err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to reload config %s: %w", e.Name, err))
			}
			return
		}
		callback(build(c.Viper))
	})
	c.Viper.WatchConfig()
}
