package store

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/shoprec/core"
)

// KVEventStore 是基于 core.KeyValueStore 的事件流适配器，实现 core.EventStore。
// 事件体存入 Hash，按用户/商品/类型的 ZSET 索引以时间戳为 score，
// 时间窗口查询走 ZRangeByScore。
//
// key 布局：
//   事件体：        {KeyPrefix}:body            (hash, field=eventID)
//   用户时间线：    {KeyPrefix}:user:{userID}   (zset, member=eventID, score=unix)
//   商品时间线：    {KeyPrefix}:product:{pid}   (zset)
//   类型时间线：    {KeyPrefix}:type:{type}     (zset)
type KVEventStore struct {
	store core.KeyValueStore

	// KeyPrefix 是存储 key 的前缀，默认 "events"
	KeyPrefix string
}

// NewKVEventStore 创建一个基于 KV 存储的事件流。
func NewKVEventStore(s core.KeyValueStore, keyPrefix string) *KVEventStore {
	if keyPrefix == "" {
		keyPrefix = "events"
	}
	return &KVEventStore{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

var _ core.EventStore = (*KVEventStore)(nil)

// Append 写入一条事件（埋点侧使用；引擎侧只读）。
// ID 缺省时分配 UUID，Timestamp 缺省时取当前时间。事件不可变，重复 ID 不覆盖索引语义。
func (s *KVEventStore) Append(ctx context.Context, ev *core.Event) error {
	if ev == nil || ev.UserID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "events: user id is required")
	}
	switch ev.Type {
	case core.EventView, core.EventCart, core.EventPurchase:
		if ev.ProductID == "" {
			return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "events: product id is required for "+string(ev.Type))
		}
	case core.EventSearch:
		if ev.SearchQuery == "" {
			return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "events: search query is required for search")
		}
	default:
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "events: unknown event type "+string(ev.Type))
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.store.HSet(ctx, s.KeyPrefix+":body", ev.ID, body); err != nil {
		return err
	}

	ts := float64(ev.Timestamp.Unix())
	if err := s.store.ZAdd(ctx, s.KeyPrefix+":user:"+ev.UserID, ts, ev.ID); err != nil {
		return err
	}
	if ev.ProductID != "" {
		if err := s.store.ZAdd(ctx, s.KeyPrefix+":product:"+ev.ProductID, ts, ev.ID); err != nil {
			return err
		}
	}
	return s.store.ZAdd(ctx, s.KeyPrefix+":type:"+string(ev.Type), ts, ev.ID)
}

func (s *KVEventStore) ByUser(ctx context.Context, userID string, since time.Time) ([]*core.Event, error) {
	return s.byIndex(ctx, s.KeyPrefix+":user:"+userID, since)
}

func (s *KVEventStore) ByProduct(ctx context.Context, productID string) ([]*core.Event, error) {
	return s.byIndex(ctx, s.KeyPrefix+":product:"+productID, time.Time{})
}

func (s *KVEventStore) ByUsers(ctx context.Context, userIDs []string, since time.Time) ([]*core.Event, error) {
	out := make([]*core.Event, 0)
	for _, uid := range userIDs {
		evs, err := s.ByUser(ctx, uid, since)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

func (s *KVEventStore) ByTypes(ctx context.Context, types []core.EventType, since time.Time) ([]*core.Event, error) {
	out := make([]*core.Event, 0)
	for _, t := range types {
		evs, err := s.byIndex(ctx, s.KeyPrefix+":type:"+string(t), since)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// byIndex 按 ZSET 索引取事件 ID，再从 Hash 批量取回事件体。
func (s *KVEventStore) byIndex(ctx context.Context, key string, since time.Time) ([]*core.Event, error) {
	min := math.Inf(-1)
	if !since.IsZero() {
		min = float64(since.Unix())
	}
	ids, err := s.store.ZRangeByScore(ctx, key, min, math.Inf(1))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	bodies, err := s.store.HGetAll(ctx, s.KeyPrefix+":body")
	if err != nil {
		return nil, err
	}

	out := make([]*core.Event, 0, len(ids))
	for _, id := range ids {
		raw, ok := bodies[id]
		if !ok {
			continue // 索引与事件体短暂不一致时跳过
		}
		var ev core.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		out = append(out, &ev)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
