package core

import "testing"

func TestEventWeight(t *testing.T) {
	tests := []struct {
		t    EventType
		want float64
	}{
		{EventView, 1},
		{EventCart, 2},
		{EventPurchase, 5},
		{EventSearch, 0},
		{"teleport", 0},
	}
	for _, tt := range tests {
		if got := EventWeight(tt.t); got != tt.want {
			t.Errorf("EventWeight(%q) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestScoredTypes(t *testing.T) {
	for _, typ := range ScoredTypes() {
		if EventWeight(typ) == 0 {
			t.Errorf("scored type %q has zero weight", typ)
		}
	}
}

func TestProductSnapshot(t *testing.T) {
	p := &Product{
		Name:     "Trail Runner",
		Price:    120,
		Category: "shoes",
		Brand:    "acme",
		Images:   []string{"a.jpg", "b.jpg", "c.jpg"},
	}
	s := p.Snapshot()
	if s.Name != p.Name || s.Price != p.Price || s.Category != p.Category || s.Brand != p.Brand {
		t.Fatalf("Snapshot() = %+v", s)
	}
	if len(s.Images) != 1 || s.Images[0] != "a.jpg" {
		t.Fatalf("Snapshot should keep only the first image, got %v", s.Images)
	}
}

func TestProductSharedTags(t *testing.T) {
	a := &Product{Tags: []string{"outdoor", "running", "light"}}
	b := &Product{Tags: []string{"running", "light", "casual"}}
	if got := a.SharedTags(b); got != 2 {
		t.Errorf("SharedTags = %d, want 2", got)
	}
	if got := a.SharedTags(&Product{}); got != 0 {
		t.Errorf("SharedTags(no tags) = %d, want 0", got)
	}
	if got := a.SharedTags(nil); got != 0 {
		t.Errorf("SharedTags(nil) = %d, want 0", got)
	}
}
