package core

// Weights 是混合融合的两路权重。期望相加为 1.0；调用方传入任意正数时
// 会被防御性归一化（各除以总和）。
type Weights struct {
	Collaborative float64 `yaml:"collaborative" json:"collaborative"`
	ContentBased  float64 `yaml:"content_based" json:"content_based"`
}

// DefaultWeights 返回默认权重：协同 0.6 / 内容 0.4。
func DefaultWeights() Weights {
	return Weights{Collaborative: 0.6, ContentBased: 0.4}
}

// Normalize 将权重归一化到和为 1。
// 权重和为 0 或负数时返回 INVALID_INPUT：静默除零会产生 NaN/Inf 并污染全部分数。
func (w Weights) Normalize() (Weights, error) {
	sum := w.Collaborative + w.ContentBased
	if sum <= 0 {
		return Weights{}, NewDomainError(ModuleRank, ErrorCodeInvalidInput, "rank: weights must have a positive sum")
	}
	return Weights{
		Collaborative: w.Collaborative / sum,
		ContentBased:  w.ContentBased / sum,
	}, nil
}

// Options 是单次推荐请求的配置面。零值字段在引擎内回落到 RecConfig 默认值。
type Options struct {
	// Limit 返回条数；<=0 时使用默认值（个性化 10 / 相似商品 5）
	Limit int

	// 排除开关。注意零值语义：引擎入口用 NewOptions 构造，三个开关默认为 true。
	ExcludeViewed    bool
	ExcludeInCart    bool
	ExcludePurchased bool

	// Categories 冷启动内容回退使用的类目过滤
	Categories []string

	// Weights 混合融合权重；零值使用默认 0.6/0.4
	Weights Weights

	// MaxAgeDays 画像事件窗口（天）；<=0 使用默认 30
	MaxAgeDays int
}

// NewOptions 返回带默认排除开关的请求配置。
func NewOptions() Options {
	return Options{
		ExcludeViewed:    true,
		ExcludeInCart:    true,
		ExcludePurchased: true,
	}
}

// RecommendContext 承载一次推荐请求的主体与配置，贯穿整个计算链路透传。
type RecommendContext struct {
	// UserID 个性化推荐的主体；item-to-item 请求可为空
	UserID string

	// ProductID 相似商品推荐的源商品
	ProductID string

	// Profile 构建好的用户画像（个性化链路填充，供排除过滤使用）
	Profile *Profile

	// Opts 请求配置
	Opts Options
}
