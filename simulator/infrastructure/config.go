package infrastructure

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"golang.org/x/text/language"

	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
)

// Console colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	defaultServerURL = "http://localhost:5000"
	defaultEnvFile   = ".env"
	envPrefix        = "SIM_"
)

var mqttSchemes = []string{"tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss"}

// AppConfig holds all validated configuration parameters of the simulator.
type AppConfig struct {
	CollectorAddress simDomain.CollectorAddress
	TickInterval     simDomain.TickInterval
	SendTimeout      simDomain.SendTimeout
	DeviceID         simDomain.DeviceID
	// MQTTBroker is empty when MQTT mirroring is disabled.
	MQTTBroker  string
	Seed        uint64
	MaxTicks    uint64
	Color       string
	Locale      language.Tag
	ShowVersion bool
}

// rawConfig is the unvalidated form shared by every configuration layer.
type rawConfig struct {
	ServerURL  string        `toml:"server_url"`
	Interval   time.Duration `toml:"interval"`
	Timeout    time.Duration `toml:"timeout"`
	MQTTBroker string        `toml:"mqtt_broker"`
	Seed       uint64        `toml:"seed"`
	DeviceID   string        `toml:"device_id"`
	MaxTicks   uint64        `toml:"max_ticks"`
	Color      string        `toml:"color"`
	Locale     string        `toml:"locale"`
}

func defaultRawConfig() rawConfig {
	return rawConfig{
		ServerURL: defaultServerURL,
		Interval:  simDomain.DefaultTickInterval,
		Timeout:   simDomain.DefaultSendTimeout,
		Color:     ColorAuto,
		Locale:    "en",
	}
}

// overlay copies every non-zero field of other onto c. File and environment
// layers cannot tell an unset value from a zero one.
func (c *rawConfig) overlay(other rawConfig) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.Interval != 0 {
		c.Interval = other.Interval
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
	if other.MQTTBroker != "" {
		c.MQTTBroker = other.MQTTBroker
	}
	if other.Seed != 0 {
		c.Seed = other.Seed
	}
	if other.DeviceID != "" {
		c.DeviceID = other.DeviceID
	}
	if other.MaxTicks != 0 {
		c.MaxTicks = other.MaxTicks
	}
	if other.Color != "" {
		c.Color = other.Color
	}
	if other.Locale != "" {
		c.Locale = other.Locale
	}
}

// cliFlags are the values bound to the command-line flag set.
type cliFlags struct {
	configPath  string
	envFile     string
	showVersion bool
	raw         rawConfig
}

func newFlagSet() (*flag.FlagSet, *cliFlags) {
	cli := &cliFlags{}
	flags := flag.NewFlagSet("simulator", flag.ContinueOnError)
	flags.StringVar(&cli.configPath, "config", "", "path to a TOML configuration file")
	flags.StringVar(&cli.envFile, "env-file", defaultEnvFile, "path to a .env file with SIM_* variables")
	flags.BoolVar(&cli.showVersion, "version", false, "print the simulator version and exit")

	flags.StringVar(&cli.raw.ServerURL, "server", "", "collector base URL (default "+defaultServerURL+")")
	flags.DurationVar(&cli.raw.Interval, "interval", 0, "time between two sensor updates (default 8s)")
	flags.DurationVar(&cli.raw.Timeout, "timeout", 0, "timeout of a single send (default 5s)")
	flags.StringVar(&cli.raw.MQTTBroker, "mqtt-broker", "", "MQTT broker to mirror readings to, e.g. tcp://localhost:1883")
	flags.Uint64Var(&cli.raw.Seed, "seed", 0, "random seed, 0 picks one from the clock")
	flags.StringVar(&cli.raw.DeviceID, "device-id", "", "device UUID, generated when empty")
	flags.Uint64Var(&cli.raw.MaxTicks, "max-ticks", 0, "stop after this many ticks, 0 runs until interrupted")
	flags.StringVar(&cli.raw.Color, "color", "", "console colours: auto, always or never")
	flags.StringVar(&cli.raw.Locale, "locale", "", "locale used to format readings (default en)")
	return flags, cli
}

// PrintUsage writes the command-line help to w.
func PrintUsage(w io.Writer) {
	flags, _ := newFlagSet()
	flags.SetOutput(w)
	flags.Usage()
}

// LoadAppConfig builds the configuration from, in increasing precedence:
// defaults, the TOML file named by -config, the .env file, the process
// environment (SIM_* variables) and command-line flags.
//
// Parse errors are returned, not printed; -h yields flag.ErrHelp.
func LoadAppConfig(fs afero.Fs, args []string, getenv func(string) string) (*AppConfig, error) {
	flags, cli := newFlagSet()
	flags.SetOutput(io.Discard)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	raw := defaultRawConfig()

	if cli.configPath != "" {
		fromFile, err := readConfigFile(fs, cli.configPath)
		if err != nil {
			return nil, err
		}
		raw.overlay(fromFile)
	}

	dotenv, err := readEnvFile(fs, cli.envFile, cli.envFile != defaultEnvFile)
	if err != nil {
		return nil, err
	}
	fromEnv, err := readEnv(func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})
	if err != nil {
		return nil, err
	}
	raw.overlay(fromEnv)
	raw.overlayFlags(flags, cli.raw)

	config, err := raw.validate()
	if err != nil {
		return nil, err
	}
	config.ShowVersion = cli.showVersion
	return config, nil
}

// overlayFlags copies every flag given on the command line onto c, zero
// values included, so -seed 0 or -max-ticks 0 still override lower layers.
func (c *rawConfig) overlayFlags(flags *flag.FlagSet, fromFlags rawConfig) {
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			c.ServerURL = fromFlags.ServerURL
		case "interval":
			c.Interval = fromFlags.Interval
		case "timeout":
			c.Timeout = fromFlags.Timeout
		case "mqtt-broker":
			c.MQTTBroker = fromFlags.MQTTBroker
		case "seed":
			c.Seed = fromFlags.Seed
		case "device-id":
			c.DeviceID = fromFlags.DeviceID
		case "max-ticks":
			c.MaxTicks = fromFlags.MaxTicks
		case "color":
			c.Color = fromFlags.Color
		case "locale":
			c.Locale = fromFlags.Locale
		}
	})
}

func readConfigFile(fs afero.Fs, path string) (rawConfig, error) {
	var fromFile rawConfig
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fromFile, fmt.Errorf("reading config file: %w", err)
	}

	meta, err := toml.Decode(string(data), &fromFile)
	if err != nil {
		return fromFile, fmt.Errorf("%w: %s: %s", simDomain.ErrInvalidConfig, path, err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fromFile, fmt.Errorf("%w: %s: unknown keys %s", simDomain.ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	return fromFile, nil
}

// readEnvFile parses a .env file without touching the process environment.
// A missing file is only an error when it was asked for explicitly.
func readEnvFile(fs afero.Fs, path string, required bool) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", simDomain.ErrInvalidConfig, path, err.Error())
	}
	return values, nil
}

func readEnv(getenv func(string) string) (rawConfig, error) {
	fromEnv := rawConfig{
		ServerURL:  getenv(envPrefix + "SERVER_URL"),
		MQTTBroker: getenv(envPrefix + "MQTT_BROKER"),
		DeviceID:   getenv(envPrefix + "DEVICE_ID"),
		Color:      getenv(envPrefix + "COLOR"),
		Locale:     getenv(envPrefix + "LOCALE"),
	}

	var err error
	if fromEnv.Interval, err = envDuration(getenv, "INTERVAL"); err != nil {
		return fromEnv, err
	}
	if fromEnv.Timeout, err = envDuration(getenv, "TIMEOUT"); err != nil {
		return fromEnv, err
	}
	if fromEnv.Seed, err = envUint(getenv, "SEED"); err != nil {
		return fromEnv, err
	}
	if fromEnv.MaxTicks, err = envUint(getenv, "MAX_TICKS"); err != nil {
		return fromEnv, err
	}
	return fromEnv, nil
}

func envDuration(getenv func(string) string, name string) (time.Duration, error) {
	value := getenv(envPrefix + name)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s: %s", simDomain.ErrInvalidConfig, envPrefix, name, err.Error())
	}
	return d, nil
}

func envUint(getenv func(string) string, name string) (uint64, error) {
	value := getenv(envPrefix + name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s: %s", simDomain.ErrInvalidConfig, envPrefix, name, err.Error())
	}
	return n, nil
}

func (c rawConfig) validate() (*AppConfig, error) {
	address, err := simDomain.NewCollectorAddress(c.ServerURL)
	if err != nil {
		return nil, err
	}

	interval, err := simDomain.NewTickInterval(c.Interval)
	if err != nil {
		return nil, err
	}

	timeout, err := simDomain.NewSendTimeout(c.Timeout)
	if err != nil {
		return nil, err
	}

	deviceID, err := newDeviceID(c.DeviceID)
	if err != nil {
		return nil, err
	}

	if c.MQTTBroker != "" {
		broker, err := url.Parse(c.MQTTBroker)
		if err != nil || !slices.Contains(mqttSchemes, broker.Scheme) || broker.Host == "" {
			return nil, fmt.Errorf("%w: unsupported MQTT broker address %q", simDomain.ErrInvalidConfig, c.MQTTBroker)
		}
	}

	if c.Color != ColorAuto && c.Color != ColorAlways && c.Color != ColorNever {
		return nil, fmt.Errorf("%w: color must be auto, always or never, got %q", simDomain.ErrInvalidConfig, c.Color)
	}

	locale, err := language.Parse(c.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %s", simDomain.ErrInvalidConfig, c.Locale, err.Error())
	}

	return &AppConfig{
		CollectorAddress: address,
		TickInterval:     interval,
		SendTimeout:      timeout,
		DeviceID:         deviceID,
		MQTTBroker:       c.MQTTBroker,
		Seed:             c.Seed,
		MaxTicks:         c.MaxTicks,
		Color:            c.Color,
		Locale:           locale,
	}, nil
}

// newDeviceID validates a configured UUID or generates a fresh one.
func newDeviceID(raw string) (simDomain.DeviceID, error) {
	if raw == "" {
		return simDomain.NewDeviceID(uuid.NewString())
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: device id must be a UUID: %s", simDomain.ErrInvalidConfig, err.Error())
	}
	return simDomain.NewDeviceID(id.String())
}
