package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Market    MarketConfig    `mapstructure:"market"`
	Clock     ClockConfig     `mapstructure:"clock"`
	Cron      CronConfig      `mapstructure:"cron"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	// Enabled false runs the engine on the in-memory store.
	Enabled         bool          `mapstructure:"enabled"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type MarketConfig struct {
	// InitialGrant is the one-time mint per user, in 7-decimal units.
	InitialGrant     string `mapstructure:"initial_grant"`
	DefaultBetWindow uint64 `mapstructure:"default_bet_window"`
	DefaultRunWindow uint64 `mapstructure:"default_run_window"`
}

type ClockConfig struct {
	// SlotDuration is the wall-clock length of one sequence unit.
	SlotDuration time.Duration `mapstructure:"slot_duration"`
}

type CronConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type SchedulerConfig struct {
	// Watchdog logs rounds sitting unresolved past their end marker.
	WatchdogSpec string `mapstructure:"watchdog_spec"`
	// AutoRound opens a fresh round whenever the engine is idle, acting
	// as the admin principal. Off unless enabled and an admin is set.
	AutoRoundEnabled    bool   `mapstructure:"auto_round_enabled"`
	AutoRoundSpec       string `mapstructure:"auto_round_spec"`
	AutoRoundAdmin      string `mapstructure:"auto_round_admin"`
	AutoRoundStartPrice string `mapstructure:"auto_round_start_price"`
	AutoRoundMode       uint32 `mapstructure:"auto_round_mode"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("market.initial_grant", "10000000000")
	v.SetDefault("market.default_bet_window", 6)
	v.SetDefault("market.default_run_window", 12)
	v.SetDefault("clock.slot_duration", "5s")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("scheduler.watchdog_spec", "@every 30s")
	v.SetDefault("scheduler.auto_round_enabled", false)
	v.SetDefault("scheduler.auto_round_spec", "@every 2m")
	v.SetDefault("scheduler.auto_round_admin", "")
	v.SetDefault("scheduler.auto_round_start_price", "1000000")
	v.SetDefault("scheduler.auto_round_mode", 0)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
