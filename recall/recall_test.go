package recall

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
)

// 召回测试共用的事件流/目录桩。行为与 store 包的 KV 适配器一致：
// 事件按时间升序返回，目录 Get 缺失返回 ErrProductNotFound。

type fakeEvents struct {
	events []*core.Event
	err    error
}

func (f *fakeEvents) ByUser(_ context.Context, userID string, since time.Time) ([]*core.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*core.Event, 0)
	for _, ev := range f.events {
		if ev.UserID != userID {
			continue
		}
		if !since.IsZero() && ev.Timestamp.Before(since) {
			continue
		}
		out = append(out, ev)
	}
	sortAsc(out)
	return out, nil
}

func (f *fakeEvents) ByProduct(_ context.Context, productID string) ([]*core.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*core.Event, 0)
	for _, ev := range f.events {
		if ev.ProductID == productID {
			out = append(out, ev)
		}
	}
	sortAsc(out)
	return out, nil
}

func (f *fakeEvents) ByUsers(ctx context.Context, userIDs []string, since time.Time) ([]*core.Event, error) {
	out := make([]*core.Event, 0)
	for _, uid := range userIDs {
		evs, err := f.ByUser(ctx, uid, since)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

func (f *fakeEvents) ByTypes(_ context.Context, types []core.EventType, since time.Time) ([]*core.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[core.EventType]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	out := make([]*core.Event, 0)
	for _, ev := range f.events {
		if _, ok := want[ev.Type]; !ok {
			continue
		}
		if !since.IsZero() && ev.Timestamp.Before(since) {
			continue
		}
		out = append(out, ev)
	}
	sortAsc(out)
	return out, nil
}

func sortAsc(evs []*core.Event) {
	sort.Slice(evs, func(i, j int) bool { return evs[i].Timestamp.Before(evs[j].Timestamp) })
}

type fakeCatalog struct {
	products map[string]*core.Product
	err      error
}

func (f *fakeCatalog) Get(_ context.Context, productID string) (*core.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[productID]
	if !ok {
		return nil, core.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) BatchGet(_ context.Context, productIDs []string) (map[string]*core.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*core.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]*core.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*core.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) ByCategories(ctx context.Context, categories []string) ([]*core.Product, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return all, nil
	}
	want := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		want[c] = struct{}{}
	}
	out := make([]*core.Product, 0, len(all))
	for _, p := range all {
		if _, ok := want[p.Category]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sameIDs(got []*core.Item, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}

func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n)
}
