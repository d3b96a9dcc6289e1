package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed application configuration.
type Config struct {
	Port  string
	Log   LogConfig
	DB    DBConfig
	Flush FlushConfig
	Auth  AuthConfig
	MQTT  MQTTConfig
}

type LogConfig struct {
	Level string
}

type DBConfig struct {
	Path string
}

// FlushConfig controls how often dirty days are written out.
type FlushConfig struct {
	Interval time.Duration
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// MQTTConfig configures the Zigbee2MQTT command sink.
type MQTTConfig struct {
	Enabled   bool
	Broker    string
	ClientID  string
	Username  string
	Password  string
	BaseTopic string
	Device    string
	QoS       byte
}

const envPrefix = "TRV"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("flush.interval", "500ms")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "trv-schedule")
	v.SetDefault("mqtt.base_topic", "zigbee2mqtt")
	v.SetDefault("mqtt.qos", 1)
}

// Load reads config.yml from the given directories (default "configs") and
// applies TRV_* environment overrides. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	qos := v.GetInt("mqtt.qos")
	if qos < 0 || qos > 2 {
		return nil, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", qos)
	}
	interval := v.GetDuration("flush.interval")
	if interval <= 0 {
		return nil, fmt.Errorf("flush.interval must be positive, got %q", v.GetString("flush.interval"))
	}

	cfg := &Config{
		Port:  v.GetString("port"),
		Log:   LogConfig{Level: strings.ToLower(v.GetString("log.level"))},
		DB:    DBConfig{Path: v.GetString("db.path")},
		Flush: FlushConfig{Interval: interval},
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		MQTT: MQTTConfig{
			Enabled:   v.GetBool("mqtt.enabled"),
			Broker:    v.GetString("mqtt.broker"),
			ClientID:  v.GetString("mqtt.client_id"),
			Username:  v.GetString("mqtt.username"),
			Password:  v.GetString("mqtt.password"),
			BaseTopic: v.GetString("mqtt.base_topic"),
			Device:    v.GetString("mqtt.device"),
			QoS:       byte(qos),
		},
	}
	if cfg.MQTT.Enabled && strings.TrimSpace(cfg.MQTT.Device) == "" {
		return nil, errors.New("mqtt.device is required when mqtt.enabled is true")
	}
	return cfg, nil
}
