// Package config provides Viper-based configuration loading for the arena server.
package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns a postgres:// URL for d. User and password are escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxSessions turns away clients beyond this many. Zero means no cap.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the listen address in host:port form.
func (t TelnetConfig) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ArenaConfig holds game content and battle settings.
type ArenaConfig struct {
	// ContentDir is the root of the content tree (monsters/, regions/, scripts/).
	ContentDir string `mapstructure:"content_dir"`
	// DefaultTown is the location a defeated character returns to when no town was visited.
	// Empty selects the start location of the first region.
	DefaultTown string `mapstructure:"default_town"`
	// DefaultEncounterRate applies to fields that declare no usable encounter_rate.
	DefaultEncounterRate float64 `mapstructure:"default_encounter_rate"`
	// Seed makes every battle roll reproducible when non-zero.
	Seed int64 `mapstructure:"seed"`
	// BattleIdleTimeout abandons a battle after this long without an action. Zero disables.
	BattleIdleTimeout time.Duration `mapstructure:"battle_idle_timeout"`
	// ScriptInstructionLimit bounds each Lua hook call. Zero selects the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// MonstersDir returns the monster template directory.
func (a ArenaConfig) MonstersDir() string { return a.ContentDir + "/monsters" }

// RegionsDir returns the region YAML directory.
func (a ArenaConfig) RegionsDir() string { return a.ContentDir + "/regions" }

// ScriptsDir returns the Lua script root; AI hooks live under ScriptsDir()/ai.
func (a ArenaConfig) ScriptsDir() string { return a.ContentDir + "/scripts" }

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	// Enabled turns on span export. When false a no-op tracer is installed.
	Enabled bool `mapstructure:"enabled"`
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `mapstructure:"service_name"`
	// Endpoint is the OTLP/HTTP collector host:port.
	Endpoint string `mapstructure:"endpoint"`
	// Insecure disables TLS to the collector.
	Insecure bool `mapstructure:"insecure"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Telnet    TelnetConfig    `mapstructure:"telnet"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Arena     ArenaConfig     `mapstructure:"arena"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Validate checks every section and reports all violations at once.
//
// Postcondition: Returns nil, or an error naming each offending key.
func (c Config) Validate() error {
	var problems []string
	problems = append(problems, c.Database.problems()...)
	problems = append(problems, c.Telnet.problems()...)
	problems = append(problems, c.Logging.problems()...)
	problems = append(problems, c.Arena.problems()...)
	problems = append(problems, c.Telemetry.problems()...)
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

var (
	sslModes   = []string{"disable", "require", "verify-ca", "verify-full"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

func oneOf(key, got string, allowed []string) []string {
	if slices.Contains(allowed, got) {
		return nil
	}
	return []string{fmt.Sprintf("%s must be one of [%s], got %q", key, strings.Join(allowed, ", "), got)}
}

func validPort(key string, port int) []string {
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("%s must be 1-65535, got %d", key, port)}
	}
	return nil
}

func (d DatabaseConfig) problems() []string {
	var out []string
	if d.Host == "" {
		out = append(out, "database.host must not be empty")
	}
	out = append(out, validPort("database.port", d.Port)...)
	if d.User == "" {
		out = append(out, "database.user must not be empty")
	}
	if d.Name == "" {
		out = append(out, "database.name must not be empty")
	}
	out = append(out, oneOf("database.sslmode", d.SSLMode, sslModes)...)
	if d.MaxConns < 1 {
		out = append(out, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		out = append(out, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		out = append(out, "database.min_conns must not exceed database.max_conns")
	}
	return out
}

func (t TelnetConfig) problems() []string {
	out := validPort("telnet.port", t.Port)
	if t.ReadTimeout < 0 {
		out = append(out, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		out = append(out, "telnet.write_timeout must not be negative")
	}
	if t.MaxSessions < 0 {
		out = append(out, fmt.Sprintf("telnet.max_sessions must be >= 0, got %d", t.MaxSessions))
	}
	return out
}

func (l LoggingConfig) problems() []string {
	return append(oneOf("logging.level", l.Level, logLevels), oneOf("logging.format", l.Format, logFormats)...)
}

func (a ArenaConfig) problems() []string {
	var out []string
	if a.ContentDir == "" {
		out = append(out, "arena.content_dir must not be empty")
	}
	if a.DefaultEncounterRate < 0 || a.DefaultEncounterRate > 1 {
		out = append(out, fmt.Sprintf("arena.default_encounter_rate must be within [0, 1], got %g", a.DefaultEncounterRate))
	}
	if a.BattleIdleTimeout < 0 {
		out = append(out, "arena.battle_idle_timeout must not be negative")
	}
	if a.ScriptInstructionLimit < 0 {
		out = append(out, fmt.Sprintf("arena.script_instruction_limit must be >= 0, got %d", a.ScriptInstructionLimit))
	}
	return out
}

// Tracing settings are only checked when export is enabled.
func (t TelemetryConfig) problems() []string {
	if !t.Enabled {
		return nil
	}
	var out []string
	if t.ServiceName == "" {
		out = append(out, "telemetry.service_name must not be empty when telemetry is enabled")
	}
	if t.Endpoint == "" {
		out = append(out, "telemetry.endpoint must not be empty when telemetry is enabled")
	}
	return out
}

// Load reads the YAML file at path over the built-in defaults. Any key can be
// overridden by an ARENA_ environment variable, e.g. ARENA_TELNET_PORT.
//
// Postcondition: Returns a validated Config or a non-nil error.
func Load(path string) (Config, error) {
	v := Defaults()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes and validates whatever v holds.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper holding only the built-in defaults, which form a
// valid Config on their own.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.max_sessions", 200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("arena.content_dir", "content")
	v.SetDefault("arena.default_town", "")
	v.SetDefault("arena.default_encounter_rate", 0.10)
	v.SetDefault("arena.seed", 0)
	v.SetDefault("arena.battle_idle_timeout", "10m")
	v.SetDefault("arena.script_instruction_limit", 0)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arena")
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.insecure", true)
}
