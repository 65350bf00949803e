package recall

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
	"github.com/rushteam/shoprec/profile"
)

// 内容相似度的属性权重。包内常量，外部不可改。
const (
	categoryWeight = 5.0
	brandWeight    = 3.0
	priceWeight    = 2.0
	priceBand      = 0.2 // 价格相近判定：±20%
)

// Content 是基于商品属性的内容召回源（Content-Based）。
//
// 相似度打分（与源商品至少共享类目/品牌/标签之一才参与）：
//   - 类目相同 +5
//   - 品牌相同 +3
//   - 价格在源商品 ±20% 内 +2
//   - 每个共享标签 +1
//
// 个性化：取最近浏览的 RecentK 个商品作种子，按种子顺序 first-seen 合并；
// 没有浏览历史时回退到目录排序（评分 + 新品加成，可按类目过滤）。
type Content struct {
	Catalog core.Catalog
	Builder *profile.Builder

	// RecentK 个性化种子数（最近浏览），<=0 默认 3
	RecentK int

	// RecencyDays 新品加成窗口（天），<=0 默认 30
	RecencyDays int
}

func (r *Content) Name() string { return "recall.content" }

// SimilarTo 返回与源商品属性最相似的 limit 个商品。
// 源商品不在目录中时返回 NOT_FOUND。
func (r *Content) SimilarTo(ctx context.Context, productID string, limit int) ([]*core.Item, error) {
	if productID == "" {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "recall: product id is required")
	}
	if r.Catalog == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	subject, err := r.Catalog.Get(ctx, productID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, err
		}
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	all, err := r.Catalog.List(ctx)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	type scored struct {
		p        *core.Product
		score    float64
		category bool
		brand    bool
	}
	candidates := make([]scored, 0)
	for _, p := range all {
		if p == nil || p.ID == subject.ID {
			continue
		}
		sameCategory := p.Category != "" && p.Category == subject.Category
		sameBrand := p.Brand != "" && p.Brand == subject.Brand
		shared := subject.SharedTags(p)
		if !sameCategory && !sameBrand && shared == 0 {
			continue
		}

		score := 0.0
		if sameCategory {
			score += categoryWeight
		}
		if sameBrand {
			score += brandWeight
		}
		if priceClose(subject.Price, p.Price) {
			score += priceWeight
		}
		score += float64(shared)

		candidates = append(candidates, scored{p: p, score: score, category: sameCategory, brand: sameBrand})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].p.ID < candidates[j].p.ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		it := core.NewItem(c.p.ID)
		it.Score = c.score
		it.Reason = contentReason(subject, c.category, c.brand)
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		it.PutLabel("category", utils.Label{Value: c.p.Category, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Recall 实现 Source 接口：基于最近浏览种子的个性化内容召回。
func (r *Content) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	limit := rctx.Opts.Limit
	if limit <= 0 {
		limit = 10
	}

	recentK := r.RecentK
	if recentK <= 0 {
		recentK = 3
	}

	var seeds []string
	if r.Builder != nil && rctx.UserID != "" {
		var err error
		seeds, err = r.Builder.RecentViews(ctx, rctx.UserID, rctx.Opts.MaxAgeDays, recentK)
		if err != nil {
			return nil, err
		}
	}

	// 没有浏览历史 → 目录排序回退（按调用方类目过滤）
	if len(seeds) == 0 {
		return r.CatalogRank(ctx, rctx.Opts.Categories, limit)
	}

	merged, err := seedFanout(ctx, seeds, func(ctx context.Context, seed string) ([]*core.Item, error) {
		items, err := r.SimilarTo(ctx, seed, limit)
		if err != nil {
			// 最近浏览的商品可能已下架：该分支按空结果处理
			if core.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	prof := rctx.Profile
	opts := rctx.Opts
	out := make([]*core.Item, 0, len(merged))
	for _, it := range merged {
		if prof.Excluded(it.ID, opts.ExcludeViewed, opts.ExcludeInCart, opts.ExcludePurchased) {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CatalogRank 是内容链路的冷启动回退：评分 + 新品加成的目录排序。
// categories 非空时只在指定类目内排序。
func (r *Content) CatalogRank(ctx context.Context, categories []string, limit int) ([]*core.Item, error) {
	if r.Catalog == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	products, err := r.Catalog.ByCategories(ctx, categories)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	recencyDays := r.RecencyDays
	if recencyDays <= 0 {
		recencyDays = 30
	}

	type scored struct {
		p     *core.Product
		score float64
		fresh bool
	}
	all := make([]scored, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		boost := recencyBoost(p, recencyDays)
		all = append(all, scored{p: p, score: p.Rating + boost, fresh: boost > 0})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].p.ID < all[j].p.ID
	})
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]*core.Item, 0, len(all))
	for _, s := range all {
		it := core.NewItem(s.p.ID)
		it.Score = s.score
		if s.fresh {
			it.Reason = fmt.Sprintf("New arrival rated %.1f stars", s.p.Rating)
		} else {
			it.Reason = fmt.Sprintf("Top rated: %.1f stars", s.p.Rating)
		}
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
		it.PutLabel("category", utils.Label{Value: s.p.Category, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// priceClose 判断候选价格是否落在源商品 ±20% 区间内。
func priceClose(subject, candidate float64) bool {
	if subject <= 0 {
		return false
	}
	return math.Abs(candidate-subject) <= priceBand*subject
}

// contentReason 生成确定性的推荐理由，优先级：类目 > 品牌 > 通用。
func contentReason(subject *core.Product, sameCategory, sameBrand bool) string {
	switch {
	case sameCategory:
		return fmt.Sprintf("Similar product in %s", subject.Category)
	case sameBrand:
		return fmt.Sprintf("More from %s", subject.Brand)
	default:
		return "Similar product features"
	}
}

// recencyBoost 返回新品加成：上架 recencyDays 内线性衰减，最高 +2。
func recencyBoost(p *core.Product, recencyDays int) float64 {
	if p.CreatedAt.IsZero() {
		return 0
	}
	age := time.Since(p.CreatedAt).Hours() / 24
	window := float64(recencyDays)
	if age < 0 || age >= window {
		return 0
	}
	return 2 * (1 - age/window)
}
