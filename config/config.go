// Package config 加载服务的 YAML 配置。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 是支持 "10m" / "1h" 字面量的 yaml 时长。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config 是服务的全部配置。
type Config struct {
	Listen    string          `yaml:"listen"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Recommend RecommendConfig `yaml:"recommend"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// RecommendConfig 控制模型与召回链路的参数。
// 各窗口以天为单位，对应召回层的时间过滤；零值取各层默认。
type RecommendConfig struct {
	PoolSize  int `yaml:"pool_size"`  // 池容量，默认 100
	PageSize  int `yaml:"page_size"`  // 每页条数，默认 10
	NeighborK int `yaml:"neighbor_k"` // 每篇文章的相似邻居数，默认 20
	Workers   int `yaml:"workers"`    // 相似度计算并发分片数，默认 CPU 数

	RebuildInterval Duration `yaml:"rebuild_interval"` // 模型重建周期，默认 1h

	SeedWindowDays         int `yaml:"seed_window_days"`          // 个性化种子窗口，默认 7
	PersonalizedWindowDays int `yaml:"personalized_window_days"`  // 个性化产出窗口，默认 3
	HotWindowDays          int `yaml:"hot_window_days"`           // 热门窗口，默认 7
	RandomWindowDays       int `yaml:"random_window_days"`        // 池内随机层窗口，默认 14
	DirectRandomWindowDays int `yaml:"direct_random_window_days"` // 旁路随机窗口，默认 2

	// Rule 是可选的 CEL 候选规则，为空表示不启用
	Rule string `yaml:"rule"`
}

// Load 从 YAML 文件加载配置并填充默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":6667"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Recommend.PoolSize <= 0 {
		c.Recommend.PoolSize = 100
	}
	if c.Recommend.PageSize <= 0 {
		c.Recommend.PageSize = 10
	}
	if c.Recommend.NeighborK <= 0 {
		c.Recommend.NeighborK = 20
	}
	if c.Recommend.RebuildInterval <= 0 {
		c.Recommend.RebuildInterval = Duration(time.Hour)
	}
	if c.Recommend.SeedWindowDays <= 0 {
		c.Recommend.SeedWindowDays = 7
	}
	if c.Recommend.PersonalizedWindowDays <= 0 {
		c.Recommend.PersonalizedWindowDays = 3
	}
	if c.Recommend.HotWindowDays <= 0 {
		c.Recommend.HotWindowDays = 7
	}
	if c.Recommend.RandomWindowDays <= 0 {
		c.Recommend.RandomWindowDays = 14
	}
	if c.Recommend.DirectRandomWindowDays <= 0 {
		c.Recommend.DirectRandomWindowDays = 2
	}
}
