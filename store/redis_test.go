package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rushteam/shoprec/core"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreWithClient(client), mr
}

func TestRedisStoreGetSet(t *testing.T) {
	rs, _ := newTestRedis(t)
	defer rs.Close()
	ctx := context.Background()

	if _, err := rs.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want NOT_FOUND", err)
	}

	if err := rs.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := rs.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Fatalf("Get(k) = %q, want v", got)
	}

	if err := rs.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := rs.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get after Delete error = %v, want NOT_FOUND", err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	rs, mr := newTestRedis(t)
	defer rs.Close()
	ctx := context.Background()

	if err := rs.Set(ctx, "k", []byte("v"), 60); err != nil {
		t.Fatal(err)
	}
	if _, err := rs.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry error = %v", err)
	}

	mr.FastForward(61 * time.Second)
	if _, err := rs.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get after expiry error = %v, want NOT_FOUND", err)
	}
}

func TestRedisStoreBatch(t *testing.T) {
	rs, _ := newTestRedis(t)
	defer rs.Close()
	ctx := context.Background()

	if err := rs.BatchSet(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatal(err)
	}
	got, err := rs.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("BatchGet = %v", got)
	}
}

func TestRedisStoreZSet(t *testing.T) {
	rs, _ := newTestRedis(t)
	defer rs.Close()
	ctx := context.Background()

	for member, score := range map[string]float64{"a": 1, "b": 3, "c": 2} {
		if err := rs.ZAdd(ctx, "z", score, member); err != nil {
			t.Fatal(err)
		}
	}

	got, err := rs.ZRange(ctx, "z", 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "c", "a"} // 降序
	if len(got) != len(want) {
		t.Fatalf("ZRange = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ZRange = %v, want %v", got, want)
		}
	}

	got, err = rs.ZRangeByScore(ctx, "z", math.Inf(-1), math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"a", "c", "b"} // 升序
	if len(got) != len(want) {
		t.Fatalf("ZRangeByScore = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ZRangeByScore = %v, want %v", got, want)
		}
	}

	got, err = rs.ZRangeByScore(ctx, "z", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Fatalf("ZRangeByScore(2,3) = %v, want [c b]", got)
	}
}

func TestRedisStoreHash(t *testing.T) {
	rs, _ := newTestRedis(t)
	defer rs.Close()
	ctx := context.Background()

	if err := rs.HSet(ctx, "h", "f1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	got, err := rs.HGet(ctx, "h", "f1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v1" {
		t.Fatalf("HGet = %q, want v1", got)
	}
	if _, err := rs.HGet(ctx, "h", "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("HGet(missing) error = %v, want NOT_FOUND", err)
	}
	all, err := rs.HGetAll(ctx, "h")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || string(all["f1"]) != "v1" {
		t.Fatalf("HGetAll = %v", all)
	}
}

// 事件流适配器跑在 Redis 后端上的集成测试。
func TestEventStoreOverRedis(t *testing.T) {
	rs, _ := newTestRedis(t)
	defer rs.Close()
	ctx := context.Background()

	es := NewKVEventStore(rs, "")
	seed := []*core.Event{
		{UserID: "u1", Type: core.EventView, ProductID: "p1", Timestamp: ts(2)},
		{UserID: "u1", Type: core.EventPurchase, ProductID: "p2", Timestamp: ts(1)},
		{UserID: "u2", Type: core.EventCart, ProductID: "p1", Timestamp: ts(1)},
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
	if len(got) != 2 {
		t.Fatalf("ByUser(u1) returned %d events, want 2", len(got))
	}

	got, err = es.ByProduct(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ByProduct(p1) returned %d events, want 2", len(got))
	}
}
