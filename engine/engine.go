// Package engine 是推荐引擎入口：读穿缓存 + 多路召回 + 混合融合。
//
// 每个入口都走同一条状态机：
//
//	REQUESTED → CACHE_CHECK → {HIT: RETURN}
//	                        → {MISS: COMPUTE → CACHE_WRITE(尽力而为) → RETURN}
//
// 计算失败（事件流/目录读取出错）向上传播；缓存读写失败只记日志，
// 永远不影响一次成功计算的返回。
package engine

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/cache"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/profile"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

// Engine 把画像、召回、融合、过滤与结果缓存装配成四个推荐入口。
// 所有协作方显式注入，不持有任何全局状态，测试可整体替换。
//
// 同一 key 的并发 miss 会各自计算、先后写回，后写覆盖（last-write-wins）。
type Engine struct {
	events  core.EventStore
	catalog core.Catalog
	cache   *cache.Cache
	log     *zap.Logger
	cfg     Config
	cfgIn   *Config

	builder *profile.Builder
	popular *recall.Popular
	collab  *recall.Collaborative
	content *recall.Content
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 注入日志器（默认 Nop）。
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithConfig 注入静态配置（零值字段回落默认值）。
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		e.cfgIn = cfg
	}
}

// New 创建推荐引擎。events/catalog 为只读协作方，cacheStore 为结果缓存后端。
func New(events core.EventStore, catalog core.Catalog, cacheStore core.Store, opts ...Option) *Engine {
	e := &Engine{
		events:  events,
		catalog: catalog,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg = e.cfgIn.withDefaults(&core.DefaultRecConfig{})

	e.cache = cache.New(cacheStore, cache.WithLogger(e.log), cache.WithTTL(e.cfg.CacheTTL))
	e.builder = profile.NewBuilder(events)
	e.builder.MaxAgeDays = e.cfg.MaxAgeDays
	e.popular = &recall.Popular{Events: events, LookbackDays: e.cfg.LookbackDays}
	e.collab = &recall.Collaborative{
		Events:         events,
		Popular:        e.popular,
		TopKAffinity:   e.cfg.TopKAffinity,
		MinProfileSize: e.cfg.MinProfileSize,
	}
	e.content = &recall.Content{
		Catalog: catalog,
		Builder: e.builder,
		RecentK: e.cfg.RecentViews,
	}
	return e
}

// Personal 返回用户的个性化推荐（协同 + 内容的混合融合）。
// 零交互用户直接得到热门兜底，结果与 Popular 一致。
func (e *Engine) Personal(ctx context.Context, userID string, opts core.Options) ([]*core.Item, error) {
	if userID == "" {
		return nil, invalid("engine: user id is required")
	}
	opts = e.withOptionDefaults(opts, false)

	if items, ok := e.cache.Get(ctx, userID, cache.TypeHybrid, ""); ok {
		e.log.Debug("recommendation cache hit",
			zap.String("subject", userID), zap.String("type", string(cache.TypeHybrid)))
		return items, nil
	}

	items, err := e.computePersonal(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, userID, cache.TypeHybrid, "", items, e.cfg.CacheTTL)
	return items, nil
}

func (e *Engine) computePersonal(ctx context.Context, userID string, opts core.Options) ([]*core.Item, error) {
	prof, err := e.builder.Build(ctx, userID, opts.MaxAgeDays)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{UserID: userID, Profile: prof, Opts: opts}

	// 冷启动：没有任何可用信号时，个性化就是热门
	if prof.Empty() {
		items, err := e.popular.Top(ctx, opts.Limit, e.cfg.LookbackDays)
		if err != nil {
			return nil, err
		}
		return e.post(opts.Limit, true).Run(ctx, rctx, items)
	}

	var collabItems, contentItems []*core.Item
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		collabItems, err = e.collab.Recall(gctx, rctx)
		return err
	})
	eg.Go(func() error {
		var err error
		contentItems, err = e.content.Recall(gctx, rctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	fused, err := rank.Fuse(collabItems, contentItems, opts.Weights, opts.Limit)
	if err != nil {
		return nil, err
	}
	return e.post(opts.Limit, true).Run(ctx, rctx, fused)
}

// SimilarTo 返回与指定商品相似的商品（协同 + 内容的混合融合）。
// 源商品不在目录中时返回 NOT_FOUND。
func (e *Engine) SimilarTo(ctx context.Context, productID string, opts core.Options) ([]*core.Item, error) {
	if productID == "" {
		return nil, invalid("engine: product id is required")
	}
	opts = e.withOptionDefaults(opts, true)

	if items, ok := e.cache.Get(ctx, productID, cache.TypeHybrid, ""); ok {
		return items, nil
	}

	rctx := &core.RecommendContext{ProductID: productID, Opts: opts}

	var collabItems, contentItems []*core.Item
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		collabItems, err = e.collab.SimilarTo(gctx, productID, opts.Limit)
		return err
	})
	eg.Go(func() error {
		var err error
		contentItems, err = e.content.SimilarTo(gctx, productID, opts.Limit)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	fused, err := rank.Fuse(collabItems, contentItems, opts.Weights, opts.Limit)
	if err != nil {
		return nil, err
	}
	out, err := e.post(opts.Limit, false).Run(ctx, rctx, fused)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, productID, cache.TypeHybrid, "", out, e.cfg.CacheTTL)
	return out, nil
}

// SimilarByBehavior 返回纯协同（共现）维度的相似商品。
func (e *Engine) SimilarByBehavior(ctx context.Context, productID string, opts core.Options) ([]*core.Item, error) {
	if productID == "" {
		return nil, invalid("engine: product id is required")
	}
	opts = e.withOptionDefaults(opts, true)

	if items, ok := e.cache.Get(ctx, productID, cache.TypeCollaborative, ""); ok {
		return items, nil
	}

	rctx := &core.RecommendContext{ProductID: productID, Opts: opts}
	items, err := e.collab.SimilarTo(ctx, productID, opts.Limit)
	if err != nil {
		return nil, err
	}
	out, err := e.post(opts.Limit, false).Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, productID, cache.TypeCollaborative, "", out, e.cfg.CacheTTL)
	return out, nil
}

// SimilarByAttributes 返回纯内容（属性相似）维度的相似商品。
func (e *Engine) SimilarByAttributes(ctx context.Context, productID string, opts core.Options) ([]*core.Item, error) {
	if productID == "" {
		return nil, invalid("engine: product id is required")
	}
	opts = e.withOptionDefaults(opts, true)

	if items, ok := e.cache.Get(ctx, productID, cache.TypeContent, ""); ok {
		return items, nil
	}

	rctx := &core.RecommendContext{ProductID: productID, Opts: opts}
	items, err := e.content.SimilarTo(ctx, productID, opts.Limit)
	if err != nil {
		return nil, err
	}
	out, err := e.post(opts.Limit, false).Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, productID, cache.TypeContent, "", out, e.cfg.CacheTTL)
	return out, nil
}

// ByCategory 返回类目维度的目录排序推荐（评分 + 新品加成）。
// categories 为空时等价于全目录排序。
func (e *Engine) ByCategory(ctx context.Context, categories []string, opts core.Options) ([]*core.Item, error) {
	opts = e.withOptionDefaults(opts, false)
	subject := categorySubject(categories)

	if items, ok := e.cache.Get(ctx, subject, cache.TypeContent, ""); ok {
		return items, nil
	}

	rctx := &core.RecommendContext{Opts: opts}
	items, err := e.content.CatalogRank(ctx, categories, opts.Limit)
	if err != nil {
		return nil, err
	}
	out, err := e.post(opts.Limit, false).Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, subject, cache.TypeContent, "", out, e.cfg.CacheTTL)
	return out, nil
}

// Popular 返回全站热门推荐。
func (e *Engine) Popular(ctx context.Context, opts core.Options) ([]*core.Item, error) {
	opts = e.withOptionDefaults(opts, false)

	if items, ok := e.cache.Get(ctx, "global", cache.TypePopular, ""); ok {
		return items, nil
	}

	rctx := &core.RecommendContext{Opts: opts}
	items, err := e.popular.Top(ctx, opts.Limit, e.cfg.LookbackDays)
	if err != nil {
		return nil, err
	}
	out, err := e.post(opts.Limit, false).Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, "global", cache.TypePopular, "", out, e.cfg.CacheTTL)
	return out, nil
}

// post 组装后处理链：过滤 → 快照 → (多样性) → 截断。
// 快照在截断前补充，缺目录的条目先剔除再计数。
func (e *Engine) post(limit int, personalized bool) *pipeline.Pipeline {
	filters := make([]filter.Filter, 0, 1+len(e.cfg.Rules))
	if personalized {
		filters = append(filters, &filter.InteractedFilter{})
	}
	for _, expr := range e.cfg.Rules {
		filters = append(filters, &filter.RuleFilter{Catalog: e.catalog, Expr: expr})
	}

	nodes := []pipeline.Node{
		&filter.Node{Filters: filters},
		&snapshotNode{catalog: e.catalog},
	}
	if e.cfg.Diversity {
		nodes = append(nodes, &rerank.Diversity{})
	}
	nodes = append(nodes, &rerank.TopNNode{N: limit})
	return &pipeline.Pipeline{Nodes: nodes}
}

// withOptionDefaults 把请求配置的零值字段填为引擎默认值。
func (e *Engine) withOptionDefaults(opts core.Options, item bool) core.Options {
	if opts.Limit <= 0 {
		if item {
			opts.Limit = e.cfg.ItemLimit
		} else {
			opts.Limit = e.cfg.Limit
		}
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = e.cfg.MaxAgeDays
	}
	if opts.Weights.Collaborative == 0 && opts.Weights.ContentBased == 0 {
		opts.Weights = e.cfg.Weights
	}
	return opts
}

// categorySubject 生成类目入口的缓存主体 key（类目排序后拼接，保证键稳定）。
func categorySubject(categories []string) string {
	if len(categories) == 0 {
		return "category:all"
	}
	sorted := make([]string, len(categories))
	copy(sorted, categories)
	sort.Strings(sorted)
	return "category:" + strings.Join(sorted, ",")
}

func invalid(msg string) error {
	return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, msg)
}
