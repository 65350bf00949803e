// Package shoprec 是电商场景的推荐引擎（Shop Recommender）。
//
// 设计要点：
// - 引擎只消费两类只读协作方（行为事件流、商品目录）和一个带 TTL 的 KV 存储
// - 召回策略独立成 Source（热门 / 协同共现 / 内容属性），混合融合统一定标到 0–10
// - 每个入口都是读穿缓存：命中即返回，miss 现场计算后尽力写回
package shoprec

import (
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/engine"
)

// 轻量 facade：便于用户直接 import "shoprec" 使用核心抽象。
type Engine = engine.Engine
type Config = engine.Config
type Options = core.Options
type Item = core.Item

var New = engine.New
var NewOptions = core.NewOptions
