// Package config loads spelljack.hcl and applies SPELLJACK_* environment
// overrides on top of it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/spelljack/internal/game"
	"github.com/lox/spelljack/internal/session"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config is the resolved configuration.
type Config struct {
	Rules   game.Rules
	Pacing  PacingConfig
	Session SessionConfig
	Storage StorageConfig
	Log     LogConfig
	Host    HostConfig
}

// PacingConfig holds the interactive delays.
type PacingConfig struct {
	Draw       time.Duration `env:"SPELLJACK_PACING_DRAW"`
	TrapReveal time.Duration `env:"SPELLJACK_PACING_TRAP_REVEAL"`
}

// SessionConfig seeds new profiles.
type SessionConfig struct {
	StartingCoins int `env:"SPELLJACK_STARTING_COINS"`
	DeckLimit     int `env:"SPELLJACK_DECK_LIMIT"`
	LoadoutLimit  int `env:"SPELLJACK_LOADOUT_LIMIT"`
}

// StorageConfig selects the profile store.
type StorageConfig struct {
	Driver string `env:"SPELLJACK_STORAGE_DRIVER"`
	// Path is a directory for the file driver and a database file for sqlite.
	Path  string `env:"SPELLJACK_STORAGE_PATH"`
	Redis RedisConfig
}

// RedisConfig holds the redis driver connection settings.
type RedisConfig struct {
	Addr     string `env:"SPELLJACK_REDIS_ADDR"`
	Password string `env:"SPELLJACK_REDIS_PASSWORD"`
	DB       int    `env:"SPELLJACK_REDIS_DB"`
	Prefix   string `env:"SPELLJACK_REDIS_PREFIX"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level string `env:"SPELLJACK_LOG_LEVEL"`
	File  string `env:"SPELLJACK_LOG_FILE"`
}

// HostConfig points at the optional host bridge.
type HostConfig struct {
	BridgeURL string `env:"SPELLJACK_HOST_BRIDGE_URL"`
}

// fileConfig mirrors spelljack.hcl. Every block and attribute is optional;
// zero values keep the defaults.
type fileConfig struct {
	Rules   *rulesBlock   `hcl:"rules,block"`
	Pacing  *pacingBlock  `hcl:"pacing,block"`
	Session *sessionBlock `hcl:"session,block"`
	Storage *storageBlock `hcl:"storage,block"`
	Log     *logBlock     `hcl:"log,block"`
	Host    *hostBlock    `hcl:"host,block"`
}

type rulesBlock struct {
	MinTarget          int `hcl:"min_target,optional"`
	MaxTarget          int `hcl:"max_target,optional"`
	WinReward          int `hcl:"win_reward,optional"`
	PerfectReward      int `hcl:"perfect_reward,optional"`
	LeafFallReward     int `hcl:"leaf_fall_reward,optional"`
	ClassicTargetLimit int `hcl:"classic_target_limit,optional"`
	ClassicThreshold   int `hcl:"classic_threshold,optional"`
	DealerPercent      int `hcl:"dealer_percent,optional"`
	TargetBonusMin     int `hcl:"target_bonus_min,optional"`
	TargetBonusMax     int `hcl:"target_bonus_max,optional"`
}

type pacingBlock struct {
	Draw       string `hcl:"draw,optional"`
	TrapReveal string `hcl:"trap_reveal,optional"`
}

type sessionBlock struct {
	StartingCoins int `hcl:"starting_coins,optional"`
	DeckLimit     int `hcl:"deck_limit,optional"`
	LoadoutLimit  int `hcl:"loadout_limit,optional"`
}

type storageBlock struct {
	Driver        string `hcl:"driver,optional"`
	Path          string `hcl:"path,optional"`
	RedisAddr     string `hcl:"redis_addr,optional"`
	RedisPassword string `hcl:"redis_password,optional"`
	RedisDB       int    `hcl:"redis_db,optional"`
	RedisPrefix   string `hcl:"redis_prefix,optional"`
}

type logBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

type hostBlock struct {
	BridgeURL string `hcl:"bridge_url,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	pacing := game.DefaultPacing()
	return &Config{
		Rules: game.DefaultRules(),
		Pacing: PacingConfig{
			Draw:       pacing.Draw,
			TrapReveal: pacing.TrapReveal,
		},
		Session: SessionConfig{
			StartingCoins: session.DefaultCoins,
			DeckLimit:     session.DefaultDeckLimit,
			LoadoutLimit:  session.DefaultLoadoutLimit,
		},
		Storage: StorageConfig{
			Driver: DriverFile,
		},
		Log: LogConfig{
			Level: "info",
			File:  "spelljack.log",
		},
	}
}

// Load reads filename and the process environment. A missing file yields
// the defaults.
func Load(filename string) (*Config, error) {
	return LoadWithEnv(filename, nil)
}

// LoadWithEnv is Load with an explicit environment; nil means the process
// environment.
func LoadWithEnv(filename string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := cfg.applyFile(filename); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if r := fc.Rules; r != nil {
		setInt(&c.Rules.MinTarget, r.MinTarget)
		setInt(&c.Rules.MaxTarget, r.MaxTarget)
		setInt(&c.Rules.WinReward, r.WinReward)
		setInt(&c.Rules.PerfectReward, r.PerfectReward)
		setInt(&c.Rules.LeafFallReward, r.LeafFallReward)
		setInt(&c.Rules.ClassicTargetLimit, r.ClassicTargetLimit)
		setInt(&c.Rules.ClassicThreshold, r.ClassicThreshold)
		setInt(&c.Rules.DealerPercent, r.DealerPercent)
		setInt(&c.Rules.TargetBonusMin, r.TargetBonusMin)
		setInt(&c.Rules.TargetBonusMax, r.TargetBonusMax)
	}
	if p := fc.Pacing; p != nil {
		if err := setDuration(&c.Pacing.Draw, "pacing.draw", p.Draw); err != nil {
			return err
		}
		if err := setDuration(&c.Pacing.TrapReveal, "pacing.trap_reveal", p.TrapReveal); err != nil {
			return err
		}
	}
	if s := fc.Session; s != nil {
		setInt(&c.Session.StartingCoins, s.StartingCoins)
		setInt(&c.Session.DeckLimit, s.DeckLimit)
		setInt(&c.Session.LoadoutLimit, s.LoadoutLimit)
	}
	if s := fc.Storage; s != nil {
		setString(&c.Storage.Driver, s.Driver)
		setString(&c.Storage.Path, s.Path)
		setString(&c.Storage.Redis.Addr, s.RedisAddr)
		setString(&c.Storage.Redis.Password, s.RedisPassword)
		setInt(&c.Storage.Redis.DB, s.RedisDB)
		setString(&c.Storage.Redis.Prefix, s.RedisPrefix)
	}
	if l := fc.Log; l != nil {
		setString(&c.Log.Level, l.Level)
		setString(&c.Log.File, l.File)
	}
	if h := fc.Host; h != nil {
		setString(&c.Host.BridgeURL, h.BridgeURL)
	}
	return nil
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

// Validate checks the configuration for values the engine cannot play with.
func (c *Config) Validate() error {
	r := c.Rules
	if r.MinTarget < 1 || r.MaxTarget < r.MinTarget {
		return fmt.Errorf("invalid target range: %d-%d", r.MinTarget, r.MaxTarget)
	}
	if r.DealerPercent < 1 || r.DealerPercent > 100 {
		return fmt.Errorf("invalid dealer percent: %d", r.DealerPercent)
	}
	if r.TargetBonusMin < 0 || r.TargetBonusMax < r.TargetBonusMin {
		return fmt.Errorf("invalid target bonus range: %d-%d", r.TargetBonusMin, r.TargetBonusMax)
	}
	if r.WinReward < 0 || r.PerfectReward < 0 || r.LeafFallReward < 0 {
		return fmt.Errorf("rewards must not be negative")
	}
	if c.Pacing.Draw < 0 || c.Pacing.TrapReveal < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}

	if c.Session.StartingCoins < 0 {
		return fmt.Errorf("invalid starting coins: %d", c.Session.StartingCoins)
	}
	if c.Session.DeckLimit < 1 || c.Session.LoadoutLimit < 1 {
		return fmt.Errorf("invalid limits: deck %d, loadout %d", c.Session.DeckLimit, c.Session.LoadoutLimit)
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("redis storage requires an address")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// StoragePath returns the configured path or the driver's default.
func (s StorageConfig) StoragePath() string {
	if s.Path != "" {
		return s.Path
	}
	switch s.Driver {
	case DriverFile:
		return "profiles"
	case DriverSQLite:
		return "spelljack.db"
	}
	return ""
}

// GamePacing converts the pacing block to engine pacing.
func (c *Config) GamePacing() game.Pacing {
	return game.Pacing{Draw: c.Pacing.Draw, TrapReveal: c.Pacing.TrapReveal}
}

// SessionOptions returns the options for new profiles.
func (c *Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithCoins(c.Session.StartingCoins),
		session.WithLimits(c.Session.DeckLimit, c.Session.LoadoutLimit),
	}
}
