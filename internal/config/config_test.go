package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tilebot/internal/domain/world"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.PollInterval() != 200*time.Millisecond {
		t.Fatalf("poll interval = %s", cfg.PollInterval())
	}
	if cfg.MapCacheTTL() != 24*time.Hour {
		t.Fatalf("cache ttl = %s", cfg.MapCacheTTL())
	}
	if cfg.PathFinder.MaxIterations != 250000 {
		t.Fatalf("max iterations = %d", cfg.PathFinder.MaxIterations)
	}
	if cfg.Drinker.Meter != "stamina" {
		t.Fatalf("drinker meter = %q", cfg.Drinker.Meter)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"listen_addr": ":9000",
		"poll_interval_millis": 500,
		"tiles": {
			"weights": {"grass": 1, "swamp": 4},
			"impassable": ["rock"]
		},
		"path_finder": {"max_iterations": 1234}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Fatalf("poll interval = %s", cfg.PollInterval())
	}
	if cfg.PathFinder.MaxIterations != 1234 {
		t.Fatalf("max iterations = %d", cfg.PathFinder.MaxIterations)
	}
	// Untouched sections keep their defaults.
	if cfg.Drinker.MaxStamina != 100 {
		t.Fatalf("drinker max stamina = %d", cfg.Drinker.MaxStamina)
	}
	if got := cfg.Tiles.Weights["swamp"]; got != 4 {
		t.Fatalf("swamp weight = %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TILEBOT_LISTEN_ADDR", ":7070")
	t.Setenv("TILEBOT_POLL_INTERVAL_MS", "50")
	t.Setenv("TILEBOT_DB_DSN", "host=db user=bot")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.PollIntervalMillis != 50 {
		t.Fatalf("poll interval ms = %d", cfg.PollIntervalMillis)
	}
	if cfg.PostgresDSN != "host=db user=bot" {
		t.Fatalf("dsn = %q", cfg.PostgresDSN)
	}
}

func TestEnvIgnoresGarbageInt(t *testing.T) {
	t.Setenv("TILEBOT_POLL_INTERVAL_MS", "soon")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollIntervalMillis != 200 {
		t.Fatalf("poll interval ms = %d, want default 200", cfg.PollIntervalMillis)
	}
}

func TestCostModelFromTiles(t *testing.T) {
	cfg := Default()
	cfg.Tiles.Weights["swamp"] = 5
	m := cfg.CostModel()

	if w, ok := m.Weight(world.TileType("swamp")); !ok || w != 5 {
		t.Fatalf("swamp weight = %d, ok = %v", w, ok)
	}
	if got := m.CostOf(world.TileRock, true); got != world.CostImpassable {
		t.Fatalf("rock class = %s", got)
	}
	if w, ok := m.Weight(world.TileWater); !ok || w != 3 {
		t.Fatalf("water weight = %d, ok = %v", w, ok)
	}
}

func TestTaskConfigConversion(t *testing.T) {
	cfg := Default()
	pc := cfg.PathFinderTaskConfig()
	if pc.StuckTimeout != 10*time.Second {
		t.Fatalf("stuck timeout = %s", pc.StuckTimeout)
	}
	if pc.FindPathMaxShortcutLength != 30 {
		t.Fatalf("shortcut length = %v", pc.FindPathMaxShortcutLength)
	}

	dc := cfg.DrinkerTaskConfig()
	if dc.OpenBeltTimeout != 5*time.Second {
		t.Fatalf("open belt timeout = %s", dc.OpenBeltTimeout)
	}
	if len(dc.Contents) != 2 || dc.Contents[0].Verb != "Drink" || dc.Contents[0].WaitInterval != 3*time.Second {
		t.Fatalf("contents = %+v", dc.Contents)
	}
}
