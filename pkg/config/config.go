package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SensorReal       = "real"
	SensorSimulation = "simulation"

	// SessionLayout formats the session timestamp stamped on every record and
	// used in the default log file name.
	SessionLayout = "2006-01-02_150405"
)

type ChannelConfig struct {
	Address   int     `yaml:"address"`
	ShuntOhms float64 `yaml:"shunt_ohms"`
}

type Config struct {
	I2CBus      string        `yaml:"i2c_bus"`
	UPSAddress  int           `yaml:"ups_address"`
	MainRail    ChannelConfig `yaml:"main_rail"`
	BatteryRail ChannelConfig `yaml:"battery_rail"`
	SensorType  string        `yaml:"sensor_type"`
	IntervalMs  int           `yaml:"interval_ms"`
	CSVFile     string        `yaml:"csv_file"`
	RunOnce     bool          `yaml:"run_once"`
	StopOnError bool          `yaml:"stop_on_error"`
	Quiet       bool          `yaml:"quiet"`

	// Session is computed once at startup and never read from a file.
	Session string `yaml:"-"`
}

// DefaultConfig returns the UPS Plus v5 wiring on a Raspberry Pi with the
// session stamped at now.
func DefaultConfig(now time.Time) Config {
	session := now.Format(SessionLayout)
	return Config{
		I2CBus:      "1",
		UPSAddress:  0x17,
		MainRail:    ChannelConfig{Address: 0x40, ShuntOhms: 0.00725},
		BatteryRail: ChannelConfig{Address: 0x45, ShuntOhms: 0.005},
		SensorType:  SensorReal,
		IntervalMs:  5000,
		CSVFile:     "batt_log_" + session + ".csv",
		Session:     session,
	}
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// HasCSVExtension reports whether path ends in .csv, ignoring case.
func HasCSVExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// LoadFromFlags loads configuration from a YAML file (optional) and flags.
func LoadFromFlags() (Config, error) {
	return LoadFromArgs(os.Args[1:], time.Now())
}

// LoadFromArgs parses args. Flags override values present in the YAML file,
// which override the defaults.
func LoadFromArgs(args []string, now time.Time) (Config, error) {
	fs := flag.NewFlagSet("upsplus-logger", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	flagRunOnce := fs.Bool("runonce", false, "Take one sample and exit instead of running until interrupted")
	flagCSVFile := fs.String("csvfile", "", "CSV file to write; created when missing, appended when it exists")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagUPSAddr := fs.String("ups-address", "", "UPS register block address (decimal or 0x hex)")
	flagInterval := fs.Int("interval-ms", -1, "Delay between samples in ms")
	flagStopOnErr := fs.Bool("stop-on-error", false, "Stop on the first bus or range error")
	flagSensorType := fs.String("sensor-type", "", "sensor type: real|simulation")
	flagQuiet := fs.Bool("quiet", false, "Do not print records to stdout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig(now)

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		if !HasCSVExtension(cfg.CSVFile) {
			def := DefaultConfig(now).CSVFile
			log.Printf("ignoring csv_file %q: not a .csv file, using %s", cfg.CSVFile, def)
			cfg.CSVFile = def
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["runonce"] {
		cfg.RunOnce = *flagRunOnce
	}
	if *flagCSVFile != "" {
		// the file is created later on, only the extension is checked here
		if HasCSVExtension(*flagCSVFile) {
			cfg.CSVFile = *flagCSVFile
		} else {
			log.Printf("ignoring csvfile %q: not a .csv file, using %s", *flagCSVFile, cfg.CSVFile)
		}
	}
	if *flagI2CBus != "" {
		cfg.I2CBus = *flagI2CBus
	}
	if *flagUPSAddr != "" {
		v, err := parseIntOrHex(*flagUPSAddr)
		if err != nil {
			return cfg, fmt.Errorf("ups-address: %w", err)
		}
		cfg.UPSAddress = v
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if set["stop-on-error"] {
		cfg.StopOnError = *flagStopOnErr
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if set["quiet"] {
		cfg.Quiet = *flagQuiet
	}

	return cfg, cfg.Validate()
}

// Validate checks the values a run cannot start without.
func (c Config) Validate() error {
	if c.IntervalMs <= 0 {
		return errors.New("interval-ms must be > 0")
	}
	switch c.SensorType {
	case SensorReal, SensorSimulation:
	default:
		return fmt.Errorf("invalid sensor type %q", c.SensorType)
	}
	if c.UPSAddress < 0x03 || c.UPSAddress > 0x77 {
		return fmt.Errorf("ups address 0x%02X out of range", c.UPSAddress)
	}
	for name, ch := range map[string]ChannelConfig{"main_rail": c.MainRail, "battery_rail": c.BatteryRail} {
		if ch.Address < 0x40 || ch.Address > 0x4F {
			return fmt.Errorf("%s: address 0x%02X out of range", name, ch.Address)
		}
		if ch.ShuntOhms <= 0 {
			return fmt.Errorf("%s: shunt_ohms must be > 0", name)
		}
	}
	if !HasCSVExtension(c.CSVFile) {
		return fmt.Errorf("csv file %q must have a .csv extension", c.CSVFile)
	}
	if c.Session == "" {
		return errors.New("session timestamp missing")
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}
