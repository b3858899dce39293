package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.World.Width != 1600 || cfg.World.Height != 900 {
		t.Errorf("world = %dx%d, want 1600x900", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Krill.PoopThreshold != 3 || cfg.Krill.FoodThreshold != 2 {
		t.Errorf("krill thresholds = (%d, %d), want (3, 2)",
			cfg.Krill.PoopThreshold, cfg.Krill.FoodThreshold)
	}
	if cfg.Squid.JetBaseDuration != 15 || cfg.Squid.JetDurationPerPower != 10 {
		t.Errorf("jet duration = %d + %d*power, want 15 + 10*power",
			cfg.Squid.JetBaseDuration, cfg.Squid.JetDurationPerPower)
	}
	if cfg.Eggs.HatchingTicks != 1800 {
		t.Errorf("hatching ticks = %d, want 1800", cfg.Eggs.HatchingTicks)
	}
	if cfg.Telemetry.StatsWindowTicks != 600 {
		t.Errorf("stats window = %d, want 600", cfg.Telemetry.StatsWindowTicks)
	}
}

func TestComputeDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Derived.WorldW32 != 1600 || cfg.Derived.WorldH32 != 900 {
		t.Errorf("derived = %vx%v, want 1600x900", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}

	// World dimensions of zero fall back to the screen size.
	cfg.World.Width = 0
	cfg.World.Height = 0
	cfg.computeDerived()
	if cfg.Derived.WorldW32 != float32(cfg.Screen.Width) {
		t.Errorf("derived width = %v, want screen width %d", cfg.Derived.WorldW32, cfg.Screen.Width)
	}
	if cfg.Derived.WorldH32 != float32(cfg.Screen.Height) {
		t.Errorf("derived height = %v, want screen height %d", cfg.Derived.WorldH32, cfg.Screen.Height)
	}
}

func TestLoadOverrideFileMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := []byte("krill:\n  poop_threshold: 7\n")
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatalf("writing override: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Krill.PoopThreshold != 7 {
		t.Errorf("poop threshold = %d, want the override 7", cfg.Krill.PoopThreshold)
	}
	// Untouched fields keep their defaults, even within the same section.
	if cfg.Krill.FoodThreshold != 2 {
		t.Errorf("food threshold = %d, want the default 2", cfg.Krill.FoodThreshold)
	}
	if cfg.Tuna.AttackRadius != 40 {
		t.Errorf("tuna attack radius = %v, want the default 40", cfg.Tuna.AttackRadius)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing file did not fail")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Fry.LayChance = 0.123
	cfg.Squid.RetreatTicks = 111

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written file: %v", err)
	}
	if back.Fry.LayChance != 0.123 {
		t.Errorf("lay chance = %v, want 0.123 after round trip", back.Fry.LayChance)
	}
	if back.Squid.RetreatTicks != 111 {
		t.Errorf("retreat ticks = %d, want 111 after round trip", back.Squid.RetreatTicks)
	}
}

func TestInitAndCfg(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg() == nil {
		t.Fatal("Cfg returned nil after Init")
	}
	if Cfg().World.Width != 1600 {
		t.Errorf("global world width = %d, want 1600", Cfg().World.Width)
	}
}
