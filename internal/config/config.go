// Package config loads arena server configuration from a YAML file
// with ARENA_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// ServerConfig holds the websocket listener settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig mirrors the match ruleset limits. Defaults follow the
// standard two-player rules, so a config file can override just one
// knob.
type GameConfig struct {
	DeckSize          int  `mapstructure:"deck_size"`
	HandSize          int  `mapstructure:"hand_size"`
	PrizeCount        int  `mapstructure:"prize_count"`
	BenchLimit        int  `mapstructure:"bench_limit"`
	MaxHandSize       int  `mapstructure:"max_hand_size"`
	MaxMulligans      int  `mapstructure:"max_mulligans"`
	CopyLimit         int  `mapstructure:"copy_limit"`
	EnergyPerTurn     int  `mapstructure:"energy_per_turn"`
	CompensationDraws bool `mapstructure:"compensation_draws"`
	FirstTurnAttack   bool `mapstructure:"first_turn_attack"`
	MaxEffectDepth    int  `mapstructure:"max_effect_depth"`
}

// CatalogConfig picks the card source. Source is one of json, csv,
// sqlite, or postgres; Path serves the file-backed sources and DSN
// serves postgres.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// ReplayConfig controls match replay capture.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Load reads configuration from the given file, applying defaults and
// ARENA_* environment overrides (ARENA_SERVER_ADDRESS,
// ARENA_CATALOG_SOURCE, ...). An empty path skips the file and runs on
// defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8089")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	def := rules.DefaultRuleset()
	v.SetDefault("game.deck_size", def.DeckSize)
	v.SetDefault("game.hand_size", def.HandSize)
	v.SetDefault("game.prize_count", def.PrizeCount)
	v.SetDefault("game.bench_limit", def.BenchLimit)
	v.SetDefault("game.max_hand_size", def.MaxHandSize)
	v.SetDefault("game.max_mulligans", def.MaxMulligans)
	v.SetDefault("game.copy_limit", def.CopyLimit)
	v.SetDefault("game.energy_per_turn", def.EnergyPerTurn)
	v.SetDefault("game.compensation_draws", def.CompensationDraws)
	v.SetDefault("game.first_turn_attack", def.FirstTurnAttack)
	v.SetDefault("game.max_effect_depth", def.MaxEffectDepth)
	v.SetDefault("catalog.source", "json")
	v.SetDefault("catalog.path", "data/cards.json")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")
}

// GameRules converts the game block into the engine's ruleset.
func (c *Config) GameRules() rules.Ruleset {
	return rules.Ruleset{
		DeckSize:          c.Game.DeckSize,
		HandSize:          c.Game.HandSize,
		PrizeCount:        c.Game.PrizeCount,
		BenchLimit:        c.Game.BenchLimit,
		MaxHandSize:       c.Game.MaxHandSize,
		MaxMulligans:      c.Game.MaxMulligans,
		CopyLimit:         c.Game.CopyLimit,
		EnergyPerTurn:     c.Game.EnergyPerTurn,
		CompensationDraws: c.Game.CompensationDraws,
		FirstTurnAttack:   c.Game.FirstTurnAttack,
		MaxEffectDepth:    c.Game.MaxEffectDepth,
	}
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	if c.Game.DeckSize <= 0 || c.Game.HandSize <= 0 || c.Game.PrizeCount <= 0 {
		return fmt.Errorf("game limits must be positive")
	}
	if c.Game.HandSize+c.Game.PrizeCount >= c.Game.DeckSize {
		return fmt.Errorf("game.deck_size must cover the opening hand and prizes")
	}

	switch c.Catalog.Source {
	case "json", "csv", "sqlite":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for source %q", c.Catalog.Source)
		}
	case "postgres":
		if c.Catalog.DSN == "" {
			return fmt.Errorf("catalog.dsn is required for source postgres")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q (want json, csv, sqlite, or postgres)", c.Catalog.Source)
	}

	if c.Replay.Enabled && c.Replay.Dir == "" {
		return fmt.Errorf("replay.dir is required when replay.enabled is set")
	}
	return nil
}
