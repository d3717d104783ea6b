package internal

import "testing"

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Vault.Path != "vault" {
		t.Errorf("vault path = %q", cfg.Vault.Path)
	}
	if cfg.Search.FuzzyMaxDistance != 3 || cfg.Search.FuzzyTolerance != 0.7 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if !cfg.Watch.Enabled {
		t.Errorf("watch should default to enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for empty vault path")
	}

	cfg = NewDefaultConfig()
	cfg.Search.FuzzyMaxDistance = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for zero max distance")
	}

	cfg = NewDefaultConfig()
	cfg.Search.FuzzyTolerance = 1.5
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for out-of-range tolerance")
	}
}
