package recall

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Popular 是热门召回源：聚合窗口内全量行为事件，按加权热度排序。
// 冷启动兜底与低信号补充都走这里；空数据得到空列表，永不报错。
type Popular struct {
	Events core.EventStore

	// LookbackDays 热度统计窗口（天），<=0 时默认 30
	LookbackDays int
}

func (r *Popular) Name() string { return "recall.popular" }

// Recall 实现 Source 接口。
func (r *Popular) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	limit := 0
	if rctx != nil {
		limit = rctx.Opts.Limit
	}
	return r.Top(ctx, limit, r.LookbackDays)
}

// Top 返回窗口内热度最高的 limit 个商品。
// 热度分与画像同权（view=1/cart=2/purchase=5），保证补充进个性化结果时分值可比；
// 各类型原始计数写进 Reason 便于诊断。
func (r *Popular) Top(ctx context.Context, limit, lookbackDays int) ([]*core.Item, error) {
	if r.Events == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	days := lookbackDays
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	events, err := r.Events.ByTypes(ctx, core.ScoredTypes(), since)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	type stat struct {
		score     float64
		views     int
		carts     int
		purchases int
	}
	stats := make(map[string]*stat)
	for _, ev := range events {
		if ev == nil || ev.ProductID == "" {
			continue
		}
		s := stats[ev.ProductID]
		if s == nil {
			s = &stat{}
			stats[ev.ProductID] = s
		}
		s.score += core.EventWeight(ev.Type)
		switch ev.Type {
		case core.EventView:
			s.views++
		case core.EventCart:
			s.carts++
		case core.EventPurchase:
			s.purchases++
		}
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := stats[ids[i]], stats[ids[j]]
		if si.score != sj.score {
			return si.score > sj.score
		}
		return ids[i] < ids[j] // 同分按 ID 稳定排序
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		s := stats[id]
		it := core.NewItem(id)
		it.Score = s.score
		it.Reason = fmt.Sprintf("Popular with shoppers: %d views, %d cart adds, %d purchases in the last %d days",
			s.views, s.carts, s.purchases, days)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
