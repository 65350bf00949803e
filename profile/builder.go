// Package profile 从近期行为事件即时构建用户兴趣画像。
// 画像是请求级的临时结构，构建后只在本次计算内使用，从不持久化。
package profile

import (
	"context"
	"time"

	"github.com/rushteam/shoprec/core"
)

// Builder 读取事件流，聚合出加权兴趣画像。只读，无副作用。
type Builder struct {
	Events core.EventStore

	// MaxAgeDays 事件窗口（天），<=0 时使用默认 30 天
	MaxAgeDays int
}

// NewBuilder 创建画像构建器。
func NewBuilder(events core.EventStore) *Builder {
	return &Builder{Events: events}
}

// Build 为用户构建窗口内的兴趣画像。
// 只统计携带 ProductID 的事件；零事件得到空画像（冷启动信号，不是错误）。
func (b *Builder) Build(ctx context.Context, userID string, maxAgeDays int) (*core.Profile, error) {
	p := core.NewProfile(userID)
	if b.Events == nil || userID == "" {
		return p, nil
	}

	days := maxAgeDays
	if days <= 0 {
		days = b.MaxAgeDays
	}
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	events, err := b.Events.ByUser(ctx, userID, since)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	for _, ev := range events {
		if ev == nil || ev.ProductID == "" {
			continue
		}
		w := core.EventWeight(ev.Type)
		if w == 0 {
			continue
		}
		p.ProductScores[ev.ProductID] += w
		switch ev.Type {
		case core.EventView:
			p.Viewed[ev.ProductID] = struct{}{}
		case core.EventCart:
			p.Cart[ev.ProductID] = struct{}{}
		case core.EventPurchase:
			p.Purchased[ev.ProductID] = struct{}{}
		}
	}
	return p, nil
}

// RecentViews 返回用户最近浏览的 k 个去重商品 ID（最近优先）。
// 个性化内容召回的种子来源。
func (b *Builder) RecentViews(ctx context.Context, userID string, maxAgeDays, k int) ([]string, error) {
	if b.Events == nil || userID == "" || k <= 0 {
		return nil, nil
	}

	days := maxAgeDays
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	events, err := b.Events.ByUser(ctx, userID, since)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleRecall, err)
	}

	// 事件按时间升序，从尾部扫取最近浏览
	seen := make(map[string]struct{}, k)
	out := make([]string, 0, k)
	for i := len(events) - 1; i >= 0 && len(out) < k; i-- {
		ev := events[i]
		if ev == nil || ev.Type != core.EventView || ev.ProductID == "" {
			continue
		}
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		out = append(out, ev.ProductID)
	}
	return out, nil
}
