package recall

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Collaborative 是基于共现的协同召回源（Item-based Collaborative Filtering）。
//
// 核心思想："被同一批用户交互过的商品，相互相似"
//
// 算法流程（item-to-item）：
//  1. 找到与源商品交互过的用户集合
//  2. 集合为空 → 返回热门兜底（定义内的回退，不是失败）
//  3. 在这些用户对其他商品的全部事件上做加权累计，并统计每个候选的去重贡献用户数
//  4. 按（分数降序，用户重叠率降序）排序
//  5. 截断并生成重叠率理由
//
// 个性化（user-based）：取画像 TopK 种子商品，逐种子并发跑 item-to-item，
// 按种子顺序 first-seen 去重合并，应用排除集合，分数降序截断；
// 画像过小（少于 MinProfileSize 个商品）时用热门补足。
type Collaborative struct {
	Events  core.EventStore
	Popular *Popular

	// TopKAffinity 个性化召回的种子商品数，<=0 默认 5
	TopKAffinity int

	// MinProfileSize 触发热门补充的最小画像规模，<=0 默认 5
	MinProfileSize int
}

func (r *Collaborative) Name() string { return "recall.collaborative" }

// SimilarTo 返回与源商品共现度最高的 limit 个商品。
func (r *Collaborative) SimilarTo(ctx context.Context, productID string, limit int) ([]*core.Item, error) {
	if productID == "" {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "recall: product id is required")
	}
	if r.Events == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	// 1. 与源商品交互过的用户（不限时间）
	subjectEvents, err := r.Events.ByProduct(ctx, productID)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}
	subjectUsers := make(map[string]struct{})
	for _, ev := range subjectEvents {
		if ev != nil && ev.UserID != "" {
			subjectUsers[ev.UserID] = struct{}{}
		}
	}

	// 2. 无人交互过 → 热门兜底
	if len(subjectUsers) == 0 {
		return r.fallback(ctx, limit)
	}

	userIDs := make([]string, 0, len(subjectUsers))
	for uid := range subjectUsers {
		userIDs = append(userIDs, uid)
	}
	sort.Strings(userIDs)

	// 3. 这些用户在其他商品上的加权共现
	events, err := r.Events.ByUsers(ctx, userIDs, time.Time{})
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	scores := make(map[string]float64)
	contributors := make(map[string]map[string]struct{})
	for _, ev := range events {
		if ev == nil || ev.ProductID == "" || ev.ProductID == productID {
			continue
		}
		w := core.EventWeight(ev.Type)
		if w == 0 {
			continue
		}
		scores[ev.ProductID] += w
		if contributors[ev.ProductID] == nil {
			contributors[ev.ProductID] = make(map[string]struct{})
		}
		contributors[ev.ProductID][ev.UserID] = struct{}{}
	}

	// 4. 分数降序，重叠率作 tie-break
	total := float64(len(subjectUsers))
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	overlap := func(id string) float64 {
		return float64(len(contributors[id])) / total
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		oi, oj := overlap(ids[i]), overlap(ids[j])
		if oi != oj {
			return oi > oj
		}
		return ids[i] < ids[j]
	})

	// 5. 截断并生成理由
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = scores[id]
		pct := int(math.Round(overlap(id) * 100))
		it.Reason = fmt.Sprintf("%d%% of users who interacted with this product also interacted with this item.", pct)
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Recall 实现 Source 接口：基于画像种子的个性化协同召回。
// 画像为空时整条链路退化为热门（冷启动）。
func (r *Collaborative) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	limit := rctx.Opts.Limit
	if limit <= 0 {
		limit = 10
	}

	prof := rctx.Profile
	if prof.Empty() {
		return r.fallback(ctx, limit)
	}

	topK := r.TopKAffinity
	if topK <= 0 {
		topK = 5
	}
	seeds := prof.TopProducts(topK)

	merged, err := seedFanout(ctx, seeds, func(ctx context.Context, seed string) ([]*core.Item, error) {
		return r.SimilarTo(ctx, seed, limit)
	})
	if err != nil {
		return nil, err
	}

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

	// 画像信号太弱时用热门补足到 limit
	minSize := r.MinProfileSize
	if minSize <= 0 {
		minSize = 5
	}
	if prof.Size() < minSize && len(out) < limit {
		out, err = r.supplement(ctx, out, prof, opts, limit)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// fallback 返回热门兜底结果。
func (r *Collaborative) fallback(ctx context.Context, limit int) ([]*core.Item, error) {
	if r.Popular == nil {
		return nil, nil
	}
	return r.Popular.Top(ctx, limit, r.Popular.LookbackDays)
}

// supplement 用热门条目把结果补足到 limit，跳过已有与被排除的商品。
func (r *Collaborative) supplement(ctx context.Context, items []*core.Item, prof *core.Profile, opts core.Options, limit int) ([]*core.Item, error) {
	pops, err := r.fallback(ctx, limit)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(items))
	for _, it := range items {
		present[it.ID] = struct{}{}
	}
	for _, it := range pops {
		if len(items) >= limit {
			break
		}
		if _, ok := present[it.ID]; ok {
			continue
		}
		if prof.Excluded(it.ID, opts.ExcludeViewed, opts.ExcludeInCart, opts.ExcludePurchased) {
			continue
		}
		present[it.ID] = struct{}{}
		items = append(items, it)
	}
	return items, nil
}
