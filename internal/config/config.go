package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	yamlv3 "gopkg.in/yaml.v3"

	"battery-dispatch/internal/model"
	"battery-dispatch/internal/strategy"
)

// EnvPrefix marks environment overrides, e.g. DISPATCH_SERVER__PORT=9000.
const EnvPrefix = "DISPATCH_"

// Config is the service configuration (YAML plus environment overrides).
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Optimizer OptimizerConfig `yaml:"optimizer"`

	// Optional: load the default battery from a preset file. If both
	// BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string         `yaml:"battery_file"`
	Battery     BatteryConfig  `yaml:"battery"`
	Strategy    StrategyConfig `yaml:"strategy"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	Env         string   `yaml:"env"`
	StaticDir   string   `yaml:"static_dir"`
	BatteryDir  string   `yaml:"battery_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type OptimizerConfig struct {
	MaxWork    float64 `yaml:"max_work"`
	DayMinutes int     `yaml:"day_minutes"`
}

// BatteryConfig is the YAML shape of a battery. Percent and power fields
// follow the request payload.
type BatteryConfig struct {
	Name            string  `yaml:"name"`
	CapacityKWh     float64 `yaml:"capacity_kwh"`
	StartSocPercent float64 `yaml:"start_soc_percent"`
	PowerLimitKW    float64 `yaml:"power_limit_kw"`
	GridLimitKW     float64 `yaml:"grid_limit_kw"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// Default is a usable configuration for a typical home battery.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Env:         "prod",
			BatteryDir:  "configs/batteries",
			CORSOrigins: []string{"*"},
		},
		Logging:   LoggingConfig{Level: "info"},
		Optimizer: OptimizerConfig{MaxWork: strategy.DefaultMaxWork, DayMinutes: model.DefaultDayMinutes},
		Battery: BatteryConfig{
			Name:            "default",
			CapacityKWh:     10,
			StartSocPercent: 50,
			PowerLimitKW:    5,
			GridLimitKW:     17,
		},
		Strategy: StrategyConfig{Name: strategy.DefaultName},
	}
}

// Load reads path (YAML, may be empty to use defaults only), applies
// DISPATCH_ environment overrides and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	c := Default()
	base := c.Battery
	c.Battery = BatteryConfig{}
	if err := k.UnmarshalWithConf("", c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, err
	}

	if c.BatteryFile != "" {
		batteryPath := c.BatteryFile
		if !filepath.IsAbs(batteryPath) && path != "" {
			// Prefer paths relative to the config file, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), batteryPath)
			if _, err := os.Stat(cand); err == nil {
				batteryPath = cand
			}
		}
		loaded, err := LoadBatteryFile(batteryPath)
		if err != nil {
			return nil, err
		}
		base = loaded
	}
	// Explicit battery fields overlay the preset or the defaults.
	c.Battery = MergeBattery(base, c.Battery)
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Optimizer.MaxWork < 0 {
		return errors.New("optimizer.max_work must be >= 0")
	}
	if c.Optimizer.DayMinutes < 0 {
		return errors.New("optimizer.day_minutes must be >= 0")
	}
	if err := c.Battery.ToModel().Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if _, err := strategy.Build(c.Strategy.Name, c.Strategy.Params, c.Battery.ToModel(), strategy.Options{}); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	return nil
}

func (b BatteryConfig) ToModel() model.BatteryConfig {
	return model.BatteryConfig{
		CapacityKWh:     b.CapacityKWh,
		StartSocPercent: b.StartSocPercent,
		PowerLimitKW:    b.PowerLimitKW,
		GridLimitKW:     b.GridLimitKW,
	}
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a preset file of the form "battery: {...}".
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yamlv3.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, fmt.Errorf("parse battery file %s: %w", path, err)
	}
	return w.Battery, nil
}

// BatteryPreset is a named battery file in the preset directory.
type BatteryPreset struct {
	ID      string        `json:"id"`
	Battery BatteryConfig `json:"battery"`
}

// LoadBatteryPresets reads every *.yaml / *.yml file in dir, sorted by ID
// (the file name without extension). A missing directory yields no presets.
func LoadBatteryPresets(dir string) ([]BatteryPreset, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []BatteryPreset
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		b, err := LoadBatteryFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if b.Name == "" {
			b.Name = id
		}
		out = append(out, BatteryPreset{ID: id, Battery: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MergeBattery overlays non-zero fields from override onto base.
// A zero StartSocPercent cannot override a preset; use a preset with 0.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	m := override.overlay().Apply(base.ToModel())
	out := BatteryConfig{
		Name:            base.Name,
		CapacityKWh:     m.CapacityKWh,
		StartSocPercent: m.StartSocPercent,
		PowerLimitKW:    m.PowerLimitKW,
		GridLimitKW:     m.GridLimitKW,
	}
	if override.Name != "" {
		out.Name = override.Name
	}
	return out
}

// overlay reads zero as unset; YAML and env overlays cannot tell them apart.
func (b BatteryConfig) overlay() model.BatteryOverride {
	return model.BatteryOverride{
		CapacityKWh:     nonZero(b.CapacityKWh),
		StartSocPercent: nonZero(b.StartSocPercent),
		PowerLimitKW:    nonZero(b.PowerLimitKW),
		GridLimitKW:     nonZero(b.GridLimitKW),
	}
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
