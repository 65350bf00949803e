package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// InteractedFilter 按请求的排除开关剔除用户已交互过的商品：
// 看过的 / 购物车里的 / 买过的分别受 ExcludeViewed / ExcludeInCart /
// ExcludePurchased 控制。排除集合来自请求级画像，不查存储。
type InteractedFilter struct{}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

func (f *InteractedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.Profile == nil {
		return false, nil
	}
	opts := rctx.Opts
	return rctx.Profile.Excluded(item.ID, opts.ExcludeViewed, opts.ExcludeInCart, opts.ExcludePurchased), nil
}
