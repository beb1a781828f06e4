package infrastructure

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
)

func noEnv(string) string { return "" }

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	config, err := LoadAppConfig(afero.NewMemMapFs(), nil, noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.CollectorAddress.UpdateURL() != "http://localhost:5000/api/sensors/update" {
		t.Errorf("unexpected collector endpoint %s", config.CollectorAddress.UpdateURL())
	}
	if time.Duration(config.TickInterval) != 8*time.Second {
		t.Errorf("expected 8s interval, got %s", config.TickInterval)
	}
	if time.Duration(config.SendTimeout) != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", time.Duration(config.SendTimeout))
	}
	if config.DeviceID == "" {
		t.Error("expected a generated device id")
	}
	if config.MQTTBroker != "" || config.MaxTicks != 0 || config.Seed != 0 {
		t.Errorf("expected optional features disabled, got %+v", config)
	}
	if config.Color != ColorAuto || config.Locale.String() != "en" {
		t.Errorf("unexpected console settings: %s, %s", config.Color, config.Locale)
	}
}

func TestLoadAppConfig_Layers(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/etc/simulator.toml", []byte(`
server_url = "http://collector.local:5000"
interval = "2s"
timeout = "3s"
mqtt_broker = "tcp://broker.local:1883"
seed = 11
`), 0o644)
	_ = afero.WriteFile(fs, ".env", []byte("SIM_INTERVAL=4s\nSIM_SEED=22\nSIM_COLOR=never\n"), 0o644)

	env := envOf(map[string]string{"SIM_SEED": "33", "SIM_LOCALE": "de"})
	args := []string{"-config", "/etc/simulator.toml", "-interval", "1s", "-max-ticks", "10"}

	config, err := LoadAppConfig(fs, args, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(config.CollectorAddress) != "http://collector.local:5000" {
		t.Errorf("expected server from file, got %s", config.CollectorAddress)
	}
	if time.Duration(config.SendTimeout) != 3*time.Second {
		t.Errorf("expected timeout from file, got %v", time.Duration(config.SendTimeout))
	}
	if config.MQTTBroker != "tcp://broker.local:1883" {
		t.Errorf("expected broker from file, got %s", config.MQTTBroker)
	}
	if config.Color != ColorNever {
		t.Errorf("expected color from .env, got %s", config.Color)
	}
	if config.Seed != 33 {
		t.Errorf("expected environment to override .env and file, got seed %d", config.Seed)
	}
	if config.Locale.String() != "de" {
		t.Errorf("expected locale from environment, got %s", config.Locale)
	}
	if time.Duration(config.TickInterval) != time.Second {
		t.Errorf("expected flag to override every other layer, got %s", config.TickInterval)
	}
	if config.MaxTicks != 10 {
		t.Errorf("expected max ticks from flag, got %d", config.MaxTicks)
	}
}

func TestLoadAppConfig_ExplicitZeroFlags(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/etc/simulator.toml", []byte("mqtt_broker = \"tcp://broker.local:1883\"\nseed = 11\n"), 0o644)

	env := envOf(map[string]string{"SIM_MAX_TICKS": "5", "SIM_SEED": "9"})
	args := []string{"-config", "/etc/simulator.toml", "-max-ticks", "0", "-seed", "0", "-mqtt-broker", ""}

	config, err := LoadAppConfig(fs, args, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.MaxTicks != 0 {
		t.Errorf("expected -max-ticks 0 to override the environment, got %d", config.MaxTicks)
	}
	if config.Seed != 0 {
		t.Errorf("expected -seed 0 to override the environment, got %d", config.Seed)
	}
	if config.MQTTBroker != "" {
		t.Errorf("expected an empty -mqtt-broker to disable mirroring, got %s", config.MQTTBroker)
	}
}

func TestLoadAppConfig_DeviceID(t *testing.T) {
	config, err := LoadAppConfig(afero.NewMemMapFs(), []string{"-device-id", "6F1C2D0E-8B7A-4C5D-9E3F-1A2B3C4D5E6F"}, noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.DeviceID != "6f1c2d0e-8b7a-4c5d-9e3f-1a2b3c4d5e6f" {
		t.Errorf("expected normalised device id, got %s", config.DeviceID)
	}

	_, err = LoadAppConfig(afero.NewMemMapFs(), []string{"-device-id", "kitchen"}, noEnv)
	if !errors.Is(err, simDomain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for a non-UUID device id, got %v", err)
	}
}

func TestLoadAppConfig_Invalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "unknown.toml", []byte("server = \"http://x\"\n"), 0o644)
	_ = afero.WriteFile(fs, "broken.toml", []byte("interval = \n"), 0o644)

	cases := map[string]struct {
		args []string
		env  map[string]string
	}{
		"negative interval": {args: []string{"-interval", "-1s"}},
		"zero interval":     {args: []string{"-interval", "0s"}},
		"bad server scheme": {args: []string{"-server", "ftp://localhost"}},
		"bad broker":        {args: []string{"-mqtt-broker", "localhost:1883"}},
		"bad color":         {args: []string{"-color", "sometimes"}},
		"bad locale":        {env: map[string]string{"SIM_LOCALE": "not a locale!"}},
		"bad env duration":  {env: map[string]string{"SIM_TIMEOUT": "soon"}},
		"bad env seed":      {env: map[string]string{"SIM_SEED": "-4"}},
		"unknown file key":  {args: []string{"-config", "unknown.toml"}},
		"malformed toml":    {args: []string{"-config", "broken.toml"}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAppConfig(fs, tc.args, envOf(tc.env))
			if !errors.Is(err, simDomain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadAppConfig_Files(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := LoadAppConfig(afero.NewMemMapFs(), []string{"-config", "nope.toml"}, noEnv)
		if err == nil {
			t.Error("expected an error for a missing config file")
		}
	})

	t.Run("missing explicit env file", func(t *testing.T) {
		_, err := LoadAppConfig(afero.NewMemMapFs(), []string{"-env-file", "prod.env"}, noEnv)
		if err == nil {
			t.Error("expected an error for a missing env file")
		}
	})

	t.Run("help", func(t *testing.T) {
		_, err := LoadAppConfig(afero.NewMemMapFs(), []string{"-h"}, noEnv)
		if !errors.Is(err, flag.ErrHelp) {
			t.Errorf("expected flag.ErrHelp, got %v", err)
		}
	})

	t.Run("version", func(t *testing.T) {
		config, err := LoadAppConfig(afero.NewMemMapFs(), []string{"-version"}, noEnv)
		if err != nil || !config.ShowVersion {
			t.Errorf("expected version request, got %+v, %v", config, err)
		}
	})
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	PrintUsage(&out)

	for _, name := range []string{"-server", "-interval", "-max-ticks", "-mqtt-broker"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("expected usage to mention %s, got %q", name, out.String())
		}
	}
}
