package recall

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
)

// seedBranch 是一路种子召回：输入种子商品 ID，输出一条候选列表。
type seedBranch func(ctx context.Context, seed string) ([]*core.Item, error)

// seedFanout 并发执行每个种子的召回分支，并按种子顺序做 first-seen 合并。
//
// 语义约束：
//   - 任一分支出错则整体失败（宁可失败也不要静默残缺的结果）
//   - 去重基于 productID 的 map，先出现的分数胜出；“先”按种子顺序定义，
//     与分支完成顺序无关，因此并发执行不影响结果
func seedFanout(ctx context.Context, seeds []string, fn seedBranch) ([]*core.Item, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(seeds))
	eg, gctx := errgroup.WithContext(ctx)

	for i, seed := range seeds {
		i, seed := i, seed
		eg.Go(func() error {
			items, err := fn(gctx, seed)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]*core.Item, 0)
	for _, items := range results {
		for _, it := range items {
			if it == nil {
				continue
			}
			if _, ok := seen[it.ID]; ok {
				continue
			}
			seen[it.ID] = struct{}{}
			out = append(out, it)
		}
	}
	return out, nil
}
