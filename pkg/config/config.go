package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Defaults for the configuration surface.
const (
	DefaultBYOSURL        = "http://localhost:4567"
	DefaultUpdateInterval = 300 * time.Second
)

// Configuration is the daemon's full settings surface, loadable from a YAML
// file and MESHBYOS_-prefixed environment variables.
type Configuration struct {
	// BYOSURL is the base URL of the display sink.
	BYOSURL string `mapstructure:"byos_url"`
	// UpdateInterval is the publish cycle interval.
	UpdateInterval time.Duration  `mapstructure:"update_interval"`
	Radio          RadioSettings  `mapstructure:"radio"`
	Device         DeviceSettings `mapstructure:"device"`
}

// RadioSettings configures the mesh gateway transport.
type RadioSettings struct {
	// BrokerURL is the gateway broker address. Empty means the default
	// local gateway.
	BrokerURL string `mapstructure:"broker_url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	// TopicRoot is the mesh topic root, e.g. "msh/US".
	TopicRoot string           `mapstructure:"topic_root"`
	Channels  []MeshChannelDef `mapstructure:"channels"`
}

// MeshChannelDef configures one mesh channel. An empty Key means the
// well-known default PSK.
type MeshChannelDef struct {
	Name string `mapstructure:"name"`
	Key  string `mapstructure:"key"`
	Role string `mapstructure:"role"`
}

// DeviceSettings is the static platform metadata published with snapshots.
type DeviceSettings struct {
	Platform         string `mapstructure:"platform"`
	MeshtasticDevice string `mapstructure:"meshtastic_device"`
}

// Load reads configuration from the given file path, or, when path is
// empty, from an optional meshbyosd.yaml in the working directory or
// /etc/meshbyosd. Environment variables override file values.
func Load(path string) (*Configuration, error) {
	v := viper.New()

	v.SetDefault("byos_url", DefaultBYOSURL)
	v.SetDefault("update_interval", DefaultUpdateInterval)
	v.SetDefault("device.platform", "Raspberry Pi")
	v.SetDefault("device.meshtastic_device", "Heltec v3")

	v.SetEnvPrefix("MESHBYOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("meshbyosd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/meshbyosd")
		if err := v.ReadInConfig(); err != nil {
			// Running on defaults and environment alone is fine.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Configuration
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	return &cfg, nil
}
