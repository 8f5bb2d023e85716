package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bootgate/bootgate/internal/logger"
	"github.com/bootgate/bootgate/internal/probe"
	"github.com/bootgate/bootgate/internal/stage"
)

// Config is parsed once at start and passed read-only into the sequencer.
// Environment variables are authoritative; an optional TOML file supplies
// the same keys plus the extra stage table.
type Config struct {
	DB       DB
	Gate     Gate
	ResetDB  bool
	Admin    Admin
	Commands Commands
	Log      logger.Config
	// Env is a top-level list of "K=V" overrides applied to every stage
	// subprocess and to the supervised process on handoff.
	Env []string
	// Stages are operator-defined extra stages, run after the built-in
	// pipeline and before handoff, in file order.
	Stages []stage.Stage
}

// DB holds the connection parameters for the database dependency. They feed
// the readiness probe; downstream tooling reads the same variables from its
// own environment and is not re-validated here.
type DB struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ProbeSettings converts the DB block for the probe factory.
func (d DB) ProbeSettings() probe.Settings {
	return probe.Settings{
		Driver:   d.Driver,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
	}
}

// Gate bounds the readiness poll loop. MaxAttempts 0 polls forever.
type Gate struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// Admin describes the administrative account the provisioning stage ensures.
// The values are handed to the provisioning command through its environment,
// never on the command line.
type Admin struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// Commands are the built-in stage commands. An empty command skips its stage.
type Commands struct {
	Reset         string `mapstructure:"reset"`
	Migrate       string `mapstructure:"migrate"`
	EnsureAdmin   string `mapstructure:"ensure_admin"`
	Seed          string `mapstructure:"seed"`
	CollectAssets string `mapstructure:"collect_assets"`
}

// Load builds the Config from the environment and, when path is non-empty,
// a TOML file. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	cfg := &Config{
		DB: DB{
			Driver:   v.GetString("db.driver"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Gate: Gate{
			Interval:    v.GetDuration("gate.interval"),
			MaxAttempts: v.GetInt("gate.max_attempts"),
		},
		ResetDB: v.GetBool("reset_db"),
		Admin: Admin{
			Username: v.GetString("admin.username"),
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
		Commands: Commands{
			Reset:         v.GetString("commands.reset"),
			Migrate:       v.GetString("commands.migrate"),
			EnsureAdmin:   v.GetString("commands.ensure_admin"),
			Seed:          v.GetString("commands.seed"),
			CollectAssets: v.GetString("commands.collect_assets"),
		},
		Log: logger.Config{
			Level:   v.GetString("log.level"),
			File:    v.GetString("log.file"),
			NoColor: v.GetBool("log.no_color"),
		},
		Env: v.GetStringSlice("env"),
	}
	if err := v.UnmarshalKey("stages", &cfg.Stages); err != nil {
		return nil, fmt.Errorf("parse stages: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Gate.MaxAttempts < 0 {
		return fmt.Errorf("gate max_attempts must be >= 0, got %d", c.Gate.MaxAttempts)
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		return fmt.Errorf("db port out of range: %d", c.DB.Port)
	}
	for i := range c.Stages {
		s := &c.Stages[i]
		policy, err := stage.ParsePolicy(string(s.Policy))
		if err != nil {
			return err
		}
		s.Policy = policy
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("gate.interval", gateDefaultInterval)
	v.SetDefault("gate.max_attempts", 0)
	v.SetDefault("reset_db", false)
	v.SetDefault("log.level", "info")
}

const gateDefaultInterval = 2 * time.Second

// bindEnv maps the documented environment variables onto config keys.
// Database parameters intentionally keep their conventional unprefixed names
// so the same variables reach downstream tooling untouched.
func bindEnv(v *viper.Viper) {
	bind := map[string]string{
		"db.driver":               "DB_DRIVER",
		"db.host":                 "DB_HOST",
		"db.port":                 "DB_PORT",
		"db.user":                 "DB_USER",
		"db.password":             "DB_PASSWORD",
		"db.name":                 "DB_NAME",
		"db.sslmode":              "DB_SSLMODE",
		"gate.interval":           "DB_WAIT_INTERVAL",
		"gate.max_attempts":       "DB_WAIT_ATTEMPTS",
		"reset_db":                "RESET_DB",
		"admin.username":          "ADMIN_USERNAME",
		"admin.email":             "ADMIN_EMAIL",
		"admin.password":          "ADMIN_PASSWORD",
		"commands.reset":          "BOOTGATE_RESET_CMD",
		"commands.migrate":        "BOOTGATE_MIGRATE_CMD",
		"commands.ensure_admin":   "BOOTGATE_ADMIN_CMD",
		"commands.seed":           "BOOTGATE_SEED_CMD",
		"commands.collect_assets": "BOOTGATE_ASSETS_CMD",
		"log.level":               "BOOTGATE_LOG_LEVEL",
		"log.file":                "BOOTGATE_LOG_FILE",
		"log.no_color":            "BOOTGATE_NO_COLOR",
	}
	for key, envName := range bind {
		_ = v.BindEnv(key, envName)
	}
}
