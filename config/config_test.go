package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: ":8080"
postgres:
  dsn: "postgres://localhost/news?sslmode=disable"
redis:
  addr: "redis:6379"
  db: 3
recommend:
  pool_size: 50
  page_size: 5
  rebuild_interval: 30m
  rule: 'label.recall_source != "random"'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 3 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Recommend.PoolSize != 50 || cfg.Recommend.PageSize != 5 {
		t.Errorf("recommend = %+v", cfg.Recommend)
	}
	if time.Duration(cfg.Recommend.RebuildInterval) != 30*time.Minute {
		t.Errorf("rebuild interval = %v", time.Duration(cfg.Recommend.RebuildInterval))
	}
	if cfg.Recommend.Rule == "" {
		t.Error("rule not loaded")
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: "postgres://localhost/news"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":6667" {
		t.Errorf("default listen = %q, want :6667", cfg.Listen)
	}
	if cfg.Recommend.PoolSize != 100 || cfg.Recommend.PageSize != 10 {
		t.Errorf("default pool/page = %d/%d, want 100/10",
			cfg.Recommend.PoolSize, cfg.Recommend.PageSize)
	}
	if cfg.Recommend.NeighborK != 20 {
		t.Errorf("default neighbor_k = %d, want 20", cfg.Recommend.NeighborK)
	}
	if time.Duration(cfg.Recommend.RebuildInterval) != time.Hour {
		t.Errorf("default rebuild interval = %v, want 1h",
			time.Duration(cfg.Recommend.RebuildInterval))
	}
	if cfg.Recommend.DirectRandomWindowDays != 2 {
		t.Errorf("default direct random window = %d, want 2",
			cfg.Recommend.DirectRandomWindowDays)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
recommend:
  rebuild_interval: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
