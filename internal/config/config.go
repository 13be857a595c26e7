package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tilebot/internal/app/task"
	"tilebot/internal/domain/world"
)

// TilesConfig maps tile type names to movement weights. Types listed in
// Impassable are never entered regardless of weight.
type TilesConfig struct {
	Weights    map[string]int `json:"weights"`
	Impassable []string       `json:"impassable"`
}

type PathFinderConfig struct {
	MaxIterations              int     `json:"max_iterations"`
	MaxShortcutLength          float64 `json:"max_shortcut_length"`
	MaxNextPointShortcutLength float64 `json:"max_next_point_shortcut_length"`
	ReportIterations           int     `json:"report_iterations"`
	StuckTimeoutSeconds        int     `json:"stuck_timeout_seconds"`
}

type ContentConfig struct {
	Name                string `json:"name"`
	Action              string `json:"action"`
	WaitIntervalSeconds int    `json:"wait_interval_seconds"`
}

type DrinkerConfig struct {
	Meter                  string          `json:"meter"`
	OpenBeltTimeoutSeconds int             `json:"open_belt_timeout_seconds"`
	SipTimeoutSeconds      int             `json:"sip_timeout_seconds"`
	MaxStamina             int             `json:"max_stamina"`
	StaminaThreshold       int             `json:"stamina_threshold"`
	LiquidContainers       []string        `json:"liquid_containers"`
	Contents               []ContentConfig `json:"contents"`
}

type Config struct {
	ListenAddr         string `json:"listen_addr"`
	GameServerURL      string `json:"game_server_url"`
	PollIntervalMillis int    `json:"poll_interval_millis"`
	ReportEvery        uint64 `json:"report_every"`
	ViewRadius         int    `json:"view_radius"`

	MapCachePath       string `json:"map_cache_path"`
	MapCacheTTLSeconds int    `json:"map_cache_ttl_seconds"`
	PostgresDSN        string `json:"postgres_dsn"`
	UpdatesLogPath     string `json:"updates_log_path"`

	Tiles      TilesConfig      `json:"tiles"`
	PathFinder PathFinderConfig `json:"path_finder"`
	Drinker    DrinkerConfig    `json:"drinker"`
}

func Default() Config {
	return Config{
		ListenAddr:         ":8080",
		PollIntervalMillis: 200,
		ReportEvery:        100,
		ViewRadius:         40,
		MapCacheTTLSeconds: int((24 * time.Hour).Seconds()),
		Tiles: TilesConfig{
			Weights: map[string]int{
				string(world.TileGrass): 1,
				string(world.TileDirt):  1,
				string(world.TileWater): 3,
				string(world.TileIce):   2,
			},
			Impassable: []string{
				string(world.TileDeep),
				string(world.TileRock),
			},
		},
		PathFinder: PathFinderConfig{
			MaxIterations:              250000,
			MaxShortcutLength:          30,
			MaxNextPointShortcutLength: 10,
			StuckTimeoutSeconds:        10,
		},
		Drinker: DrinkerConfig{
			Meter:                  "stamina",
			OpenBeltTimeoutSeconds: 5,
			SipTimeoutSeconds:      5,
			MaxStamina:             100,
			StaminaThreshold:       60,
			LiquidContainers:       []string{"Waterskin", "Waterflask", "Kuksa"},
			Contents: []ContentConfig{
				{Name: "Water", Action: "Drink", WaitIntervalSeconds: 3},
				{Name: "Tea", Action: "Sip", WaitIntervalSeconds: 5},
			},
		},
	}
}

// Load reads the JSON config file when path is non-empty, then applies
// environment overrides on top. A missing file is an error; an empty path
// means defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = strEnv("TILEBOT_LISTEN_ADDR", c.ListenAddr)
	c.GameServerURL = strEnv("TILEBOT_GAME_SERVER_URL", c.GameServerURL)
	c.PostgresDSN = strEnv("TILEBOT_DB_DSN", c.PostgresDSN)
	c.MapCachePath = strEnv("TILEBOT_MAP_CACHE_PATH", c.MapCachePath)
	c.UpdatesLogPath = strEnv("TILEBOT_UPDATES_LOG", c.UpdatesLogPath)
	c.PollIntervalMillis = intEnv("TILEBOT_POLL_INTERVAL_MS", c.PollIntervalMillis)
}

func strEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

func (c Config) MapCacheTTL() time.Duration {
	return time.Duration(c.MapCacheTTLSeconds) * time.Second
}

// CostModel builds the domain cost model from the tile tables.
func (c Config) CostModel() world.CostModel {
	weights := make(map[world.TileType]int, len(c.Tiles.Weights))
	for name, w := range c.Tiles.Weights {
		weights[world.TileType(name)] = w
	}
	impassable := make([]world.TileType, 0, len(c.Tiles.Impassable))
	for _, name := range c.Tiles.Impassable {
		impassable = append(impassable, world.TileType(name))
	}
	return world.NewCostModel(weights, impassable)
}

func (c Config) PathFinderTaskConfig() task.PathFinderConfig {
	return task.PathFinderConfig{
		FindPathMaxIterations:      c.PathFinder.MaxIterations,
		FindPathMaxShortcutLength:  c.PathFinder.MaxShortcutLength,
		MaxNextPointShortcutLength: c.PathFinder.MaxNextPointShortcutLength,
		ReportIterations:           c.PathFinder.ReportIterations,
		StuckTimeout:               time.Duration(c.PathFinder.StuckTimeoutSeconds) * time.Second,
	}
}

func (c Config) DrinkerTaskConfig() task.DrinkerConfig {
	contents := make([]task.ContentConfig, 0, len(c.Drinker.Contents))
	for _, cc := range c.Drinker.Contents {
		contents = append(contents, task.ContentConfig{
			Name:         cc.Name,
			Verb:         cc.Action,
			WaitInterval: time.Duration(cc.WaitIntervalSeconds) * time.Second,
		})
	}
	return task.DrinkerConfig{
		Meter:            c.Drinker.Meter,
		OpenBeltTimeout:  time.Duration(c.Drinker.OpenBeltTimeoutSeconds) * time.Second,
		SipTimeout:       time.Duration(c.Drinker.SipTimeoutSeconds) * time.Second,
		MaxStamina:       c.Drinker.MaxStamina,
		StaminaThreshold: c.Drinker.StaminaThreshold,
		LiquidContainers: c.Drinker.LiquidContainers,
		Contents:         contents,
	}
}
