package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no stray meshbyosd.yaml is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BYOSURL != DefaultBYOSURL {
		t.Errorf("BYOSURL = %q, want %q", cfg.BYOSURL, DefaultBYOSURL)
	}
	if cfg.UpdateInterval != DefaultUpdateInterval {
		t.Errorf("UpdateInterval = %v, want %v", cfg.UpdateInterval, DefaultUpdateInterval)
	}
	if cfg.Device.Platform != "Raspberry Pi" {
		t.Errorf("Platform = %q, want Raspberry Pi", cfg.Device.Platform)
	}
	if cfg.Device.MeshtasticDevice != "Heltec v3" {
		t.Errorf("MeshtasticDevice = %q, want Heltec v3", cfg.Device.MeshtasticDevice)
	}
	if len(cfg.Radio.Channels) != 0 {
		t.Errorf("Channels = %+v, want none configured", cfg.Radio.Channels)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshbyosd.yaml")
	content := `
byos_url: http://display.local:2300
update_interval: 120s
radio:
  broker_url: tcp://gateway.local:1883
  topic_root: msh/EU_868
  channels:
    - name: LongFast
    - name: Private
      key: "1PG7OiApB1nwvP+rz05pAQ=="
      role: secondary
device:
  platform: Pi Zero 2W
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BYOSURL != "http://display.local:2300" {
		t.Errorf("BYOSURL = %q", cfg.BYOSURL)
	}
	if cfg.UpdateInterval != 120*time.Second {
		t.Errorf("UpdateInterval = %v, want 2m", cfg.UpdateInterval)
	}
	if cfg.Radio.BrokerURL != "tcp://gateway.local:1883" {
		t.Errorf("BrokerURL = %q", cfg.Radio.BrokerURL)
	}
	if cfg.Radio.TopicRoot != "msh/EU_868" {
		t.Errorf("TopicRoot = %q", cfg.Radio.TopicRoot)
	}
	if len(cfg.Radio.Channels) != 2 {
		t.Fatalf("Channels = %d, want 2", len(cfg.Radio.Channels))
	}
	if cfg.Radio.Channels[1].Name != "Private" || cfg.Radio.Channels[1].Role != "secondary" {
		t.Errorf("channel[1] = %+v", cfg.Radio.Channels[1])
	}
	// Unset file keys keep their defaults.
	if cfg.Device.MeshtasticDevice != "Heltec v3" {
		t.Errorf("MeshtasticDevice = %q, want default", cfg.Device.MeshtasticDevice)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MESHBYOS_BYOS_URL", "http://override:9999")
	t.Setenv("MESHBYOS_UPDATE_INTERVAL", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BYOSURL != "http://override:9999" {
		t.Errorf("BYOSURL = %q, want env override", cfg.BYOSURL)
	}
	if cfg.UpdateInterval != 30*time.Second {
		t.Errorf("UpdateInterval = %v, want 30s", cfg.UpdateInterval)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded for a missing explicit config path")
	}
}

func TestLoadInvalidInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshbyosd.yaml")
	if err := os.WriteFile(path, []byte("update_interval: -10s\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UpdateInterval != DefaultUpdateInterval {
		t.Errorf("UpdateInterval = %v, want default for non-positive value", cfg.UpdateInterval)
	}
}
