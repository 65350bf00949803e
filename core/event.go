package core

import (
	"context"
	"time"
)

// EventType 是用户行为事件类型。
type EventType string

const (
	EventView     EventType = "view"        // 浏览商品详情
	EventCart     EventType = "add_to_cart" // 加入购物车
	EventPurchase EventType = "purchase"    // 购买
	EventSearch   EventType = "search"      // 搜索
)

// Event 是一条用户行为事件。由埋点/追踪侧写入，推荐引擎只读消费。
//
// 约束：
//   - view / add_to_cart / purchase 必须携带 ProductID
//   - search 必须携带 SearchQuery
//   - 事件一经写入不可变更
type Event struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Type        EventType      `json:"type"`
	ProductID   string         `json:"product_id,omitempty"`
	SearchQuery string         `json:"search_query,omitempty"`
	CategoryID  string         `json:"category_id,omitempty"`
	SessionID   string         `json:"session_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// EventWeight 返回事件类型的行为权重：view=1，add_to_cart=2，purchase=5。
// 兴趣画像与热门统计使用同一套权重，保证两边分值可比。
func EventWeight(t EventType) float64 {
	switch t {
	case EventView:
		return 1
	case EventCart:
		return 2
	case EventPurchase:
		return 5
	default:
		return 0
	}
}

// ScoredTypes 返回参与加权计分的事件类型（search 不计分）。
func ScoredTypes() []EventType {
	return []EventType{EventView, EventCart, EventPurchase}
}

// EventStore 是行为事件的领域接口（append-only，引擎侧只读）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - since 为零值时表示不限时间范围
type EventStore interface {
	// ByUser 获取某用户 since 之后的全部事件（按时间升序）
	ByUser(ctx context.Context, userID string, since time.Time) ([]*Event, error)

	// ByProduct 获取与某商品发生过交互的全部事件（不限时间）
	ByProduct(ctx context.Context, productID string) ([]*Event, error)

	// ByUsers 批量获取多个用户 since 之后的事件
	ByUsers(ctx context.Context, userIDs []string, since time.Time) ([]*Event, error)

	// ByTypes 获取 since 之后指定类型的全部事件（热门统计用）
	ByTypes(ctx context.Context, types []EventType, since time.Time) ([]*Event, error)
}
