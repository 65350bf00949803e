package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

func newEventStore(t *testing.T) (*KVEventStore, func()) {
	t.Helper()
	kv := NewMemoryStore()
	return NewKVEventStore(kv, ""), func() { kv.Close() }
}

func ts(daysAgo int) time.Time {
	return time.Now().AddDate(0, 0, -daysAgo).Truncate(time.Second)
}

func TestEventStoreAppendValidation(t *testing.T) {
	es, done := newEventStore(t)
	defer done()
	ctx := context.Background()

	tests := []struct {
		name string
		ev   *core.Event
	}{
		{name: "nil event", ev: nil},
		{name: "missing user", ev: &core.Event{Type: core.EventView, ProductID: "p1"}},
		{name: "view without product", ev: &core.Event{UserID: "u1", Type: core.EventView}},
		{name: "cart without product", ev: &core.Event{UserID: "u1", Type: core.EventCart}},
		{name: "search without query", ev: &core.Event{UserID: "u1", Type: core.EventSearch}},
		{name: "unknown type", ev: &core.Event{UserID: "u1", Type: "teleport", ProductID: "p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := es.Append(ctx, tt.ev)
			if !core.IsInvalidInput(err) {
				t.Fatalf("Append() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestEventStoreAppendAssignsIDAndTimestamp(t *testing.T) {
	es, done := newEventStore(t)
	defer done()
	ctx := context.Background()

	ev := &core.Event{UserID: "u1", Type: core.EventView, ProductID: "p1"}
	if err := es.Append(ctx, ev); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ev.ID == "" {
		t.Error("Append should assign an event ID")
	}
	if ev.Timestamp.IsZero() {
		t.Error("Append should assign a timestamp")
	}
}

func TestEventStoreByUser(t *testing.T) {
	es, done := newEventStore(t)
	defer done()
	ctx := context.Background()

	// 统一基准时间，避免窗口边界落在秒级抖动上
	base := time.Now().Truncate(time.Second)
	seed := []*core.Event{
		{UserID: "u1", Type: core.EventView, ProductID: "p1", Timestamp: base.AddDate(0, 0, -3)},
		{UserID: "u1", Type: core.EventPurchase, ProductID: "p2", Timestamp: base.AddDate(0, 0, -1)},
		{UserID: "u1", Type: core.EventSearch, SearchQuery: "shoes", Timestamp: base.AddDate(0, 0, -2)},
		{UserID: "u2", Type: core.EventView, ProductID: "p1", Timestamp: base.AddDate(0, 0, -1)},
	}
	for _, ev := range seed {
		if err := es.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	got, err := es.ByUser(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("ByUser(u1) returned %d events, want 3", len(got))
	}
	// 按时间升序
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("events should be sorted ascending by timestamp")
		}
	}

	// since 窗口：3 天前的事件被过滤
	got, err = es.ByUser(ctx, "u1", base.AddDate(0, 0, -2))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ByUser(u1, since 2d) returned %d events, want 2", len(got))
	}

	// 没有事件的用户得到空结果，不是错误
	got, err = es.ByUser(ctx, "nobody", time.Time{})
	if err != nil || len(got) != 0 {
		t.Fatalf("ByUser(nobody) = %v, %v", got, err)
	}
}

func TestEventStoreByProduct(t *testing.T) {
	es, done := newEventStore(t)
	defer done()
	ctx := context.Background()

	seed := []*core.Event{
		{UserID: "u1", Type: core.EventView, ProductID: "p1", Timestamp: ts(2)},
		{UserID: "u2", Type: core.EventCart, ProductID: "p1", Timestamp: ts(1)},
		{UserID: "u1", Type: core.EventView, ProductID: "p2", Timestamp: ts(1)},
	}
	for _, ev := range seed {
		if err := es.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	got, err := es.ByProduct(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ByProduct(p1) returned %d events, want 2", len(got))
	}
	users := map[string]bool{}
	for _, ev := range got {
		users[ev.UserID] = true
	}
	if !users["u1"] || !users["u2"] {
		t.Fatalf("ByProduct(p1) users = %v, want u1+u2", users)
	}
}

func TestEventStoreByUsers(t *testing.T) {
	es, done := newEventStore(t)
	defer done()
	ctx := context.Background()

	seed := []*core.Event{
		{UserID: "u1", Type: core.EventView, ProductID: "p1", Timestamp: ts(1)},
		{UserID: "u2", Type: core.EventView, ProductID: "p2", Timestamp: ts(1)},
		{UserID: "u3", Type: core.EventView, ProductID: "p3", Timestamp: ts(1)},
	}
	for _, ev := range seed {
		if err := es.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	got, err := es.ByUsers(ctx, []string{"u1", "u3"}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ByUsers returned %d events, want 2", len(got))
	}
}

func TestEventStoreByTypes(t *testing.T) {
	es, done := newEventStore(t)
	defer done()
	ctx := context.Background()

	seed := []*core.Event{
		{UserID: "u1", Type: core.EventView, ProductID: "p1", Timestamp: ts(3)},
		{UserID: "u1", Type: core.EventPurchase, ProductID: "p2", Timestamp: ts(2)},
		{UserID: "u2", Type: core.EventSearch, SearchQuery: "shoes", Timestamp: ts(1)},
	}
	for _, ev := range seed {
		if err := es.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	got, err := es.ByTypes(ctx, core.ScoredTypes(), time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ByTypes(scored) returned %d events, want 2", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("merged events should be sorted ascending by timestamp")
		}
	}
	for _, ev := range got {
		if ev.Type == core.EventSearch {
			t.Fatal("search events should not appear in scored types")
		}
	}
}
