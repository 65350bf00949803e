package core

import "sort"

// Profile 是用户的兴趣画像：按请求从近期事件即时构建，用完即弃，从不落盘。
//
// 不变式：ProductScores[p] 等于窗口内该商品全部事件的行为权重之和
// （view=1 / add_to_cart=2 / purchase=5）。
type Profile struct {
	UserID string

	// ProductScores 是商品 → 加权兴趣分
	ProductScores map[string]float64

	// 行为集合，用于结果排除（"买过的不再推"等）
	Viewed    map[string]struct{}
	Cart      map[string]struct{}
	Purchased map[string]struct{}
}

// NewProfile 创建一个空画像。
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:        userID,
		ProductScores: make(map[string]float64),
		Viewed:        make(map[string]struct{}),
		Cart:          make(map[string]struct{}),
		Purchased:     make(map[string]struct{}),
	}
}

// Empty 判断画像是否没有任何有效交互（冷启动信号，调用方应回退到热门）。
func (p *Profile) Empty() bool {
	return p == nil || len(p.ProductScores) == 0
}

// Size 返回画像中有交互的商品数。
func (p *Profile) Size() int {
	if p == nil {
		return 0
	}
	return len(p.ProductScores)
}

// TopProducts 返回兴趣分最高的 k 个商品 ID（分数降序，同分按 ID 升序保证稳定）。
func (p *Profile) TopProducts(k int) []string {
	if p == nil || k <= 0 || len(p.ProductScores) == 0 {
		return nil
	}
	type scored struct {
		id    string
		score float64
	}
	all := make([]scored, 0, len(p.ProductScores))
	for id, s := range p.ProductScores {
		all = append(all, scored{id: id, score: s})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].id < all[j].id
	})
	if len(all) > k {
		all = all[:k]
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.id)
	}
	return out
}

// Excluded 根据排除开关返回商品是否应从结果中剔除。
func (p *Profile) Excluded(productID string, viewed, cart, purchased bool) bool {
	if p == nil {
		return false
	}
	if viewed {
		if _, ok := p.Viewed[productID]; ok {
			return true
		}
	}
	if cart {
		if _, ok := p.Cart[productID]; ok {
			return true
		}
	}
	if purchased {
		if _, ok := p.Purchased[productID]; ok {
			return true
		}
	}
	return false
}
