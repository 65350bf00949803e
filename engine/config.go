package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/shoprec/core"
)

// Config 是引擎的静态配置（支持 YAML）。零值字段回落到默认值。
type Config struct {
	// Limit 个性化/热门推荐默认条数（默认 10）
	Limit int `yaml:"limit"`

	// ItemLimit 相似商品推荐默认条数（默认 5）
	ItemLimit int `yaml:"item_limit"`

	// MaxAgeDays 画像事件窗口（默认 30 天）
	MaxAgeDays int `yaml:"max_age_days"`

	// LookbackDays 热门统计窗口（默认 30 天）
	LookbackDays int `yaml:"lookback_days"`

	// TopKAffinity 个性化协同召回种子数（默认 5）
	TopKAffinity int `yaml:"top_k_affinity"`

	// MinProfileSize 触发热门补充的最小画像规模（默认 5）
	MinProfileSize int `yaml:"min_profile_size"`

	// RecentViews 个性化内容召回种子数（默认 3）
	RecentViews int `yaml:"recent_views"`

	// CacheTTL 结果缓存存活时间（默认 24h）
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Weights 混合融合默认权重（默认协同 0.6 / 内容 0.4）
	Weights core.Weights `yaml:"weights"`

	// Rules 运营剔除规则（CEL 表达式，命中即剔除）
	Rules []string `yaml:"rules"`

	// Diversity 是否开启类目多样性重排
	Diversity bool `yaml:"diversity"`
}

// LoadConfig 从 YAML 文件加载引擎配置。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// withDefaults 把零值字段填为默认值（defaults 来自 core.RecConfig）。
func (c *Config) withDefaults(rc core.RecConfig) Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.Limit <= 0 {
		out.Limit = rc.DefaultLimit()
	}
	if out.ItemLimit <= 0 {
		out.ItemLimit = rc.DefaultItemLimit()
	}
	if out.MaxAgeDays <= 0 {
		out.MaxAgeDays = rc.DefaultMaxAgeDays()
	}
	if out.LookbackDays <= 0 {
		out.LookbackDays = rc.DefaultMaxAgeDays()
	}
	if out.TopKAffinity <= 0 {
		out.TopKAffinity = rc.DefaultTopKAffinity()
	}
	if out.MinProfileSize <= 0 {
		out.MinProfileSize = rc.DefaultMinProfileSize()
	}
	if out.RecentViews <= 0 {
		out.RecentViews = rc.DefaultRecentViews()
	}
	if out.CacheTTL <= 0 {
		out.CacheTTL = rc.DefaultCacheTTL()
	}
	if out.Weights.Collaborative == 0 && out.Weights.ContentBased == 0 {
		out.Weights = core.DefaultWeights()
	}
	return out
}
