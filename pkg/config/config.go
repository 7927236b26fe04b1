package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/Veraticus/linewatch/pkg/types"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoPatterns is returned when no pattern was configured.
	ErrNoPatterns = errors.New("no patterns specified")
	// ErrNoHandlers is returned when no handler was configured.
	ErrNoHandlers = errors.New("no handlers specified")
	// ErrInvalid wraps every other configuration problem.
	ErrInvalid = errors.New("invalid configuration")
)

// Config holds all configuration for linewatch
type Config struct {
	// Run behaviour
	Follow           bool   `yaml:"follow"`
	Complete         string `yaml:"complete"`
	FlushOnInterrupt bool   `yaml:"flush_on_interrupt"`
	Verbose          bool   `yaml:"verbose" env:"LINEWATCH_DEBUG"`

	// Command handlers
	Shell       string `yaml:"shell" env:"LINEWATCH_SHELL"`
	Placeholder string `yaml:"placeholder"`
	// MaxCommands caps concurrently running commands; 0 means no cap
	MaxCommands int `yaml:"max_commands"`
	// CommandGrace is how long the end of a run waits for running commands
	// before leaving them behind; 0 does not wait
	CommandGrace time.Duration `yaml:"command_grace"`

	// Screen output: auto, always or never
	Color string `yaml:"color" env:"LINEWATCH_COLOR"`

	// Patterns and handlers; command line entries are appended after these
	Patterns []types.Pattern `yaml:"patterns"`
	Handlers []types.Binding `yaml:"handlers"`
	Colors   map[int]string  `yaml:"colors"`

	FollowOpts FollowConfig `yaml:"follow_opts"`
	Mail       MailConfig   `yaml:"mail"`
}

// FollowConfig controls how a growing file is tracked
type FollowConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// Command, when set, replaces the native follower with a subprocess.
	// {file} is replaced with the input path.
	Command string `yaml:"command"`
}

// MailConfig holds outbound mail settings
type MailConfig struct {
	Transport    string          `yaml:"transport" env:"LINEWATCH_MAIL_TRANSPORT"`
	From         string          `yaml:"from" env:"LINEWATCH_MAIL_FROM"`
	SMTPHost     string          `yaml:"smtp_host" env:"LINEWATCH_SMTP_HOST"`
	SMTPPort     int             `yaml:"smtp_port" env:"LINEWATCH_SMTP_PORT"`
	Username     string          `yaml:"username"`
	Password     string          `yaml:"password"`
	SendmailPath string          `yaml:"sendmail_path"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"max_messages"`
}

// Mail transports
const (
	TransportSendmail = "sendmail"
	TransportSMTP     = "smtp"
	TransportStdout   = "stdout"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		FlushOnInterrupt: true,
		Shell:            "/bin/sh",
		Placeholder:      "{}",
		CommandGrace:     2 * time.Second,
		Color:            ColorAuto,
		Colors:           map[int]string{},
		FollowOpts: FollowConfig{
			PollInterval: time.Second,
		},
		Mail: MailConfig{
			Transport:    TransportSendmail,
			SMTPHost:     "localhost",
			SMTPPort:     25,
			SendmailPath: "/usr/sbin/sendmail",
		},
	}
}

// Load loads configuration from file and environment.
// An explicit path must exist; the default location is optional.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: failed to load config file: %v", ErrInvalid, err)
			}
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to load from environment: %v", ErrInvalid, err)
	}

	return cfg, nil
}

// Apply merges command line patterns, handlers and options into cfg.
func (c *Config) Apply(args *Args) {
	if args == nil {
		return
	}
	c.Patterns = append(c.Patterns, args.Patterns...)
	c.Handlers = append(c.Handlers, args.Bindings...)
	if c.Colors == nil {
		c.Colors = map[int]string{}
	}
	for index, name := range args.Colors {
		c.Colors[index] = name
	}
}

// Prepare compiles patterns and validates the configuration. It must run
// after every source of configuration has been merged.
func (c *Config) Prepare() error {
	if err := compilePatterns(c); err != nil {
		return err
	}
	return validate(c)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("LINEWATCH_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "linewatch", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "linewatch", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if debug := os.Getenv("LINEWATCH_DEBUG"); debug != "" {
		v, err := parseBool(debug)
		if err != nil {
			return fmt.Errorf("invalid LINEWATCH_DEBUG: %w", err)
		}
		cfg.Verbose = v
	}

	if flush := os.Getenv("LINEWATCH_FLUSH_ON_INTERRUPT"); flush != "" {
		v, err := parseBool(flush)
		if err != nil {
			return fmt.Errorf("invalid LINEWATCH_FLUSH_ON_INTERRUPT: %w", err)
		}
		cfg.FlushOnInterrupt = v
	}

	if shell := os.Getenv("LINEWATCH_SHELL"); shell != "" {
		cfg.Shell = shell
	}

	if mode := os.Getenv("LINEWATCH_COLOR"); mode != "" {
		cfg.Color = mode
	}

	if transport := os.Getenv("LINEWATCH_MAIL_TRANSPORT"); transport != "" {
		cfg.Mail.Transport = transport
	}

	if from := os.Getenv("LINEWATCH_MAIL_FROM"); from != "" {
		cfg.Mail.From = from
	}

	if host := os.Getenv("LINEWATCH_SMTP_HOST"); host != "" {
		cfg.Mail.SMTPHost = host
	}

	if port := os.Getenv("LINEWATCH_SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid LINEWATCH_SMTP_PORT: %w", err)
		}
		cfg.Mail.SMTPPort = p
	}

	return nil
}

func parseBool(v string) (bool, error) {
	switch v {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%q (use true/false)", v)
	}
}

// compilePatterns compiles all regex patterns
func compilePatterns(cfg *Config) error {
	for i := range cfg.Patterns {
		pattern := &cfg.Patterns[i]
		re, err := regexp.Compile(pattern.Regex)
		if err != nil {
			return fmt.Errorf("%w: failed to compile pattern %d: %v", ErrInvalid, pattern.Index, err)
		}
		pattern.SetCompiledRegex(re)
	}
	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if len(cfg.Patterns) == 0 {
		return ErrNoPatterns
	}

	if len(cfg.Handlers) == 0 {
		return ErrNoHandlers
	}

	for _, p := range cfg.Patterns {
		if p.Index < 0 {
			return fmt.Errorf("%w: pattern index %d must be non-negative", ErrInvalid, p.Index)
		}
	}

	for _, b := range cfg.Handlers {
		if b.Index < 0 {
			return fmt.Errorf("%w: %s handler index %d must be non-negative", ErrInvalid, b.Kind, b.Index)
		}
	}

	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", ErrInvalid, cfg.Color)
	}

	switch cfg.Mail.Transport {
	case TransportSendmail, TransportSMTP, TransportStdout:
	default:
		return fmt.Errorf("%w: unknown mail transport %q", ErrInvalid, cfg.Mail.Transport)
	}

	if cfg.MaxCommands < 0 {
		return fmt.Errorf("%w: max_commands must be non-negative", ErrInvalid)
	}

	if cfg.CommandGrace < 0 {
		return fmt.Errorf("%w: command_grace must be non-negative", ErrInvalid)
	}

	if cfg.Mail.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("%w: mail.rate_limit.max_messages must be non-negative", ErrInvalid)
	}

	if cfg.Mail.RateLimit.Window < 0 {
		return fmt.Errorf("%w: mail.rate_limit.window must be non-negative", ErrInvalid)
	}

	if cfg.FollowOpts.PollInterval <= 0 {
		return fmt.Errorf("%w: follow_opts.poll_interval must be positive", ErrInvalid)
	}

	return nil
}
