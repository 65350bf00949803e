package core

import "time"

// RecConfig 是推荐相关的配置接口，用于提供默认值。
type RecConfig interface {
	// DefaultLimit 返回个性化/热门推荐的默认条数
	DefaultLimit() int

	// DefaultItemLimit 返回 item-to-item（相似商品）推荐的默认条数
	DefaultItemLimit() int

	// DefaultMaxAgeDays 返回画像构建的事件窗口（天）
	DefaultMaxAgeDays() int

	// DefaultTopKAffinity 返回个性化协同召回使用的种子商品数
	DefaultTopKAffinity() int

	// DefaultMinProfileSize 返回触发热门补充的最小画像规模
	DefaultMinProfileSize() int

	// DefaultRecentViews 返回个性化内容召回使用的最近浏览数
	DefaultRecentViews() int

	// DefaultCacheTTL 返回结果缓存的默认存活时间
	DefaultCacheTTL() time.Duration
}

// DefaultRecConfig 是默认的推荐配置实现。
type DefaultRecConfig struct{}

func (c *DefaultRecConfig) DefaultLimit() int {
	return 10
}

func (c *DefaultRecConfig) DefaultItemLimit() int {
	return 5
}

func (c *DefaultRecConfig) DefaultMaxAgeDays() int {
	return 30
}

func (c *DefaultRecConfig) DefaultTopKAffinity() int {
	return 5
}

func (c *DefaultRecConfig) DefaultMinProfileSize() int {
	return 5
}

func (c *DefaultRecConfig) DefaultRecentViews() int {
	return 3
}

func (c *DefaultRecConfig) DefaultCacheTTL() time.Duration {
	return 24 * time.Hour
}
