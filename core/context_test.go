package core

import "testing"

func TestWeightsNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Weights
		want    Weights
		wantErr bool
	}{
		{
			name: "already normalized",
			in:   Weights{Collaborative: 0.6, ContentBased: 0.4},
			want: Weights{Collaborative: 0.6, ContentBased: 0.4},
		},
		{
			name: "renormalize arbitrary positive weights",
			in:   Weights{Collaborative: 3, ContentBased: 1},
			want: Weights{Collaborative: 0.75, ContentBased: 0.25},
		},
		{
			name: "single sided",
			in:   Weights{Collaborative: 2},
			want: Weights{Collaborative: 1, ContentBased: 0},
		},
		{
			name:    "zero sum is invalid input",
			in:      Weights{},
			wantErr: true,
		},
		{
			name:    "negative sum is invalid input",
			in:      Weights{Collaborative: -1, ContentBased: 0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsInvalidInput(err) {
					t.Fatalf("expected INVALID_INPUT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProfileTopProducts(t *testing.T) {
	p := NewProfile("u1")
	p.ProductScores["a"] = 1
	p.ProductScores["b"] = 5
	p.ProductScores["c"] = 3
	p.ProductScores["d"] = 3

	got := p.TopProducts(3)
	want := []string{"b", "c", "d"} // 同分按 ID 稳定
	if len(got) != len(want) {
		t.Fatalf("TopProducts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopProducts = %v, want %v", got, want)
		}
	}
}

func TestProfileExcluded(t *testing.T) {
	p := NewProfile("u1")
	p.Viewed["v"] = struct{}{}
	p.Cart["c"] = struct{}{}
	p.Purchased["p"] = struct{}{}

	tests := []struct {
		id                      string
		viewed, cart, purchased bool
		want                    bool
	}{
		{"v", true, false, false, true},
		{"v", false, true, true, false},
		{"c", false, true, false, true},
		{"p", false, false, true, true},
		{"x", true, true, true, false},
	}
	for _, tt := range tests {
		if got := p.Excluded(tt.id, tt.viewed, tt.cart, tt.purchased); got != tt.want {
			t.Errorf("Excluded(%q,%v,%v,%v) = %v, want %v", tt.id, tt.viewed, tt.cart, tt.purchased, got, tt.want)
		}
	}
}
