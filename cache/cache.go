// Package cache 实现推荐结果的 TTL 缓存：读穿 + upsert 写回。
//
// 失败语义（边界内全量吸收）：
//   - 读失败 / 解码失败 / 已过期 → 一律视为 miss，降级为现场计算
//   - 写失败 → 记日志后吞掉：调用方手里已经有新鲜正确的结果，
//     不能让缓存问题阻塞返回
//
// 缓存状态永远不改变一次成功计算的对外结果。
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/core"
)

// Type 是推荐结果集的类型。
type Type string

const (
	TypeCollaborative Type = "collaborative"
	TypeContent       Type = "content_based"
	TypeHybrid        Type = "hybrid"
	TypePopular       Type = "popular"
)

// Set 是一份持久化的推荐结果集。
// 不变式：每个 (SubjectKey, Type, SourceProductID) 组合至多存在一份
// 未过期的结果；写入即覆盖（upsert，不追加）。
type Set struct {
	SubjectKey      string       `json:"subject_key"`
	Type            Type         `json:"type"`
	SourceProductID string       `json:"source_product_id,omitempty"`
	Items           []*core.Item `json:"items"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
}

// Cache 是推荐结果缓存。底层是任意 core.Store；key 过期依赖存储 TTL，
// 同时结果体里冗余 ExpiresAt，对不支持 TTL 的后端做读时兜底判断。
type Cache struct {
	store core.Store
	log   *zap.Logger
	ttl   time.Duration
}

// Option 配置 Cache。
type Option func(*Cache)

// WithLogger 注入日志器（默认 Nop）。
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTTL 覆盖默认存活时间（默认 24h）。
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New 创建推荐结果缓存。
func New(store core.Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		log:   zap.NewNop(),
		ttl:   24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key 生成组合键：rec:{type}:{subject}[:src:{sourceProductID}]。
func Key(subject string, t Type, sourceProductID string) string {
	k := "rec:" + string(t) + ":" + subject
	if sourceProductID != "" {
		k += ":src:" + sourceProductID
	}
	return k
}

// Get 读取未过期的结果集；第二个返回值表示是否命中。
// 任何读取/解码错误都按 miss 处理，不向调用方暴露。
func (c *Cache) Get(ctx context.Context, subject string, t Type, sourceProductID string) ([]*core.Item, bool) {
	if c.store == nil {
		return nil, false
	}
	key := Key(subject, t, sourceProductID)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			c.log.Warn("recommendation cache read failed",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		c.log.Warn("recommendation cache decode failed",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}

	// 存储层 TTL 失效前的兜底：过期即 miss
	if !set.ExpiresAt.IsZero() && time.Now().After(set.ExpiresAt) {
		return nil, false
	}
	return set.Items, true
}

// Put 以 upsert 语义写回结果集。ttl<=0 时使用默认值。
// 写失败只记日志：新结果已经在调用方手里，绝不因缓存问题失败。
func (c *Cache) Put(ctx context.Context, subject string, t Type, sourceProductID string, items []*core.Item, ttl time.Duration) {
	if c.store == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := time.Now()
	set := Set{
		SubjectKey:      subject,
		Type:            t,
		SourceProductID: sourceProductID,
		Items:           items,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}

	key := Key(subject, t, sourceProductID)
	raw, err := json.Marshal(&set)
	if err != nil {
		c.log.Warn("recommendation cache encode failed",
			zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw, int(ttl.Seconds())); err != nil {
		c.log.Warn("recommendation cache write failed",
			zap.String("key", key), zap.Error(err))
	}
}
