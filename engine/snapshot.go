package engine

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// snapshotNode 是后处理节点：为结果补充去范式化的商品快照。
// 已不在目录中的商品（下架/删除）在截断前剔除。
type snapshotNode struct {
	catalog core.Catalog
}

func (n *snapshotNode) Name() string {
	return "postprocess.snapshot"
}

func (n *snapshotNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *snapshotNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.catalog == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}
	products, err := n.catalog.BatchGet(ctx, ids)
	if err != nil {
		return nil, core.ComputeFailed(core.ModuleEngine, err)
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		p, ok := products[it.ID]
		if !ok {
			continue
		}
		it.Product = p.Snapshot()
		out = append(out, it)
	}
	return out, nil
}
