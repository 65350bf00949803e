package store

import (
	"context"
	"encoding/json"

	"github.com/rushteam/shoprec/core"
)

// KVCatalog 是基于 core.KeyValueStore 的商品目录适配器，实现 core.Catalog。
// 商品体存入单个 Hash（field=productID），适合万级目录；更大规模应换目录服务实现。
type KVCatalog struct {
	store core.KeyValueStore

	// Key 是商品 Hash 的 key，默认 "catalog:products"
	Key string
}

// NewKVCatalog 创建一个基于 KV 存储的商品目录。
func NewKVCatalog(s core.KeyValueStore, key string) *KVCatalog {
	if key == "" {
		key = "catalog:products"
	}
	return &KVCatalog{
		store: s,
		Key:   key,
	}
}

var _ core.Catalog = (*KVCatalog)(nil)

// Put 写入/覆盖一条商品（目录同步侧使用）。
func (c *KVCatalog) Put(ctx context.Context, p *core.Product) error {
	if p == nil || p.ID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "catalog: product id is required")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.store.HSet(ctx, c.Key, p.ID, body)
}

func (c *KVCatalog) Get(ctx context.Context, productID string) (*core.Product, error) {
	raw, err := c.store.HGet(ctx, c.Key, productID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrProductNotFound
		}
		return nil, err
	}
	var p core.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *KVCatalog) BatchGet(ctx context.Context, productIDs []string) (map[string]*core.Product, error) {
	if len(productIDs) == 0 {
		return map[string]*core.Product{}, nil
	}
	all, err := c.store.HGetAll(ctx, c.Key)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*core.Product, len(productIDs))
	for _, id := range productIDs {
		raw, ok := all[id]
		if !ok {
			continue // 不存在的 ID 跳过，不报错
		}
		var p core.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		out[id] = &p
	}
	return out, nil
}

func (c *KVCatalog) List(ctx context.Context) ([]*core.Product, error) {
	all, err := c.store.HGetAll(ctx, c.Key)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Product, 0, len(all))
	for _, raw := range all {
		var p core.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

func (c *KVCatalog) ByCategories(ctx context.Context, categories []string) ([]*core.Product, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return all, nil
	}
	want := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		want[cat] = struct{}{}
	}
	out := make([]*core.Product, 0, len(all))
	for _, p := range all {
		if _, ok := want[p.Category]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
