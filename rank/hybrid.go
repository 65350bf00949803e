// Package rank 把多路召回的结果融合为一份最终排序。
package rank

import (
	"math"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// combinedReason 是协同与内容同时命中时的合并理由。
const combinedReason = "Recommended by shopper behavior and product similarity"

// Fuse 将协同与内容两路排序按权重融合为一份混合排序。
//
// 算法：
//  1. 以 productID 为 key 建映射；协同条目以 score×w.Collaborative 插入
//  2. 内容条目已存在则累加 score×w.ContentBased 并合并来源/理由，否则插入
//  3. 按累计分降序截断到 limit
//  4. 重缩放：各分除以截断集内最大分再乘 10，保留一位小数，
//     使混合输出恒为 0–10 刻度，与两路原始分值量纲无关
//
// 权重会先做防御性归一化；权重和非正返回 INVALID_INPUT。
// 截断集为空时跳过重缩放（避免除零）。
func Fuse(collab, content []*core.Item, w core.Weights, limit int) ([]*core.Item, error) {
	nw, err := w.Normalize()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	type entry struct {
		item    *core.Item
		score   float64
		collab  bool
		content bool
	}
	byID := make(map[string]*entry)
	order := make([]string, 0, len(collab)+len(content))

	for _, it := range collab {
		if it == nil {
			continue
		}
		if _, ok := byID[it.ID]; ok {
			continue
		}
		byID[it.ID] = &entry{item: it, score: it.Score * nw.Collaborative, collab: true}
		order = append(order, it.ID)
	}

	for _, it := range content {
		if it == nil {
			continue
		}
		if e, ok := byID[it.ID]; ok {
			e.score += it.Score * nw.ContentBased
			e.content = true
			continue
		}
		byID[it.ID] = &entry{item: it, score: it.Score * nw.ContentBased, content: true}
		order = append(order, it.ID)
	}

	sort.SliceStable(order, func(i, j int) bool {
		ei, ej := byID[order[i]], byID[order[j]]
		if ei.score != ej.score {
			return ei.score > ej.score
		}
		return order[i] < order[j]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	if len(order) == 0 {
		return nil, nil
	}

	maxScore := byID[order[0]].score

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		e := byID[id]
		it := core.NewItem(id)
		it.Score = rescale(e.score, maxScore)
		it.Product = e.item.Product
		switch {
		case e.collab && e.content:
			it.Reason = combinedReason
			it.PutLabel("sources", utils.Label{Value: "collaborative|content_based", Source: "rank"})
		case e.collab:
			it.Reason = e.item.Reason
			it.PutLabel("sources", utils.Label{Value: "collaborative", Source: "rank"})
		default:
			it.Reason = e.item.Reason
			it.PutLabel("sources", utils.Label{Value: "content_based", Source: "rank"})
		}
		for k, v := range e.item.Labels {
			it.PutLabel(k, v)
		}
		out = append(out, it)
	}
	return out, nil
}

// rescale 把累计分映射到 0–10 刻度，保留一位小数。
func rescale(score, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(score/max*100) / 10
}
