package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"

	EnvConfigPath    = "TODOBOT_CONFIG"
	EnvTelegramToken = "TODOBOT_TELEGRAM_TOKEN"

	TransportTelegram = "telegram"
	TransportConsole  = "console"
)

// Keymap holds the console transport shortcuts.
type Keymap struct {
	Quit     string `toml:"quit"`
	Send     string `toml:"send"`
	List     string `toml:"list"`
	Add      string `toml:"add"`
	Complete string `toml:"complete"`
	Delete   string `toml:"delete"`
	Edit     string `toml:"edit"`
}

type Telegram struct {
	Token       string `toml:"token"`
	PollTimeout int    `toml:"poll_timeout"`
	Debug       bool   `toml:"debug"`
}

type Health struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	DBPath    string   `toml:"db_path"`
	Transport string   `toml:"transport"`
	Telegram  Telegram `toml:"telegram"`
	Health    Health   `toml:"health"`
	Log       Log      `toml:"log"`
	Keys      Keymap   `toml:"keys"`
}

// ResolveConfigPath returns $TODOBOT_CONFIG or config.toml.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if the file does not exist. The telegram token from the environment
// wins over the file.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		applyEnv(&cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if tok := strings.TrimSpace(os.Getenv(EnvTelegramToken)); tok != "" {
		cfg.Telegram.Token = tok
	}
}

func (c Config) Validate() error {
	switch c.Transport {
	case TransportTelegram:
		if c.Telegram.Token == "" {
			return fmt.Errorf("telegram transport needs a token (set %s)", EnvTelegramToken)
		}
		if c.Telegram.PollTimeout <= 0 {
			return errors.New("telegram.poll_timeout must be greater than zero")
		}
	case TransportConsole:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.Health.Enabled && c.Health.Addr == "" {
		return errors.New("health.addr is empty")
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:    DefaultDBName,
		Transport: TransportTelegram,
		Telegram: Telegram{
			PollTimeout: 60,
		},
		Health: Health{
			Enabled: true,
			Addr:    ":8080",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Keys: Keymap{
			Quit:     "ctrl+c",
			Send:     "enter",
			List:     "f1",
			Add:      "f2",
			Complete: "f3",
			Delete:   "f4",
			Edit:     "f5",
		},
	}
}
