package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// RuleFilter 是运营规则过滤器：用 CEL 表达式描述“什么样的商品不出推荐位”。
// 规则命中（表达式为 true）的商品被剔除。
//
// 示例：
//
//	f := &filter.RuleFilter{
//	    Catalog: catalog,
//	    Expr:    `product.stock == 0`,
//	}
type RuleFilter struct {
	// Catalog 用于取商品属性供表达式求值；为 nil 时 product 按空对象求值
	Catalog core.Catalog

	// Expr CEL 表达式；空表达式不剔除任何商品
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}

	var product *core.Product
	if f.Catalog != nil {
		p, err := f.Catalog.Get(ctx, item.ID)
		if err == nil {
			product = p
		}
		// 目录读取失败按 product 缺省处理，规则照常求值
	}

	return dsl.NewEval(item, product, rctx).Evaluate(f.Expr)
}
