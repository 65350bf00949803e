package core

import (
	"context"
	"time"
)

// Product 是商品目录中的一条记录。目录由商城侧维护，引擎只读消费。
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Tags      []string  `json:"tags,omitempty"`
	Images    []string  `json:"images,omitempty"`
	Stock     int       `json:"stock"`
	Rating    float64   `json:"rating"`     // 平均评分（冷启动目录排序用）
	CreatedAt time.Time `json:"created_at"` // 上架时间（新品加成用）
}

// Snapshot 是面向 API 消费方的商品快照：只保留展示需要的字段。
type Snapshot struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Images   []string `json:"images,omitempty"` // 最多保留首图
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
}

// Snapshot 返回商品的去范式化快照。Images 只取首图。
func (p *Product) Snapshot() *Snapshot {
	s := &Snapshot{
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Brand:    p.Brand,
	}
	if len(p.Images) > 0 {
		s.Images = p.Images[:1]
	}
	return s
}

// HasTag 判断商品是否带有指定标签。
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SharedTags 返回与另一商品共有的标签数量。
func (p *Product) SharedTags(other *Product) int {
	if other == nil || len(p.Tags) == 0 || len(other.Tags) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range other.Tags {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// Catalog 是商品目录的领域接口（只读）。
type Catalog interface {
	// Get 按 ID 获取商品；不存在时返回 ErrProductNotFound
	Get(ctx context.Context, productID string) (*Product, error)

	// BatchGet 批量获取商品；不存在的 ID 被跳过，不报错
	BatchGet(ctx context.Context, productIDs []string) (map[string]*Product, error)

	// List 列出全部商品（目录规模可控的场景；分页/检索交给目录侧）
	List(ctx context.Context) ([]*Product, error)

	// ByCategories 列出指定类目下的商品；categories 为空等价于 List
	ByCategories(ctx context.Context, categories []string) ([]*Product, error)
}

// ErrProductNotFound 表示商品在目录中不存在。
var ErrProductNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "catalog: product not found")
