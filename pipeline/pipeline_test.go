package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/shoprec/core"
)

type markNode struct {
	name string
	err  error
}

func (n *markNode) Name() string { return n.name }
func (n *markNode) Kind() Kind   { return KindPostProcess }

func (n *markNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	it := core.NewItem(n.name)
	return append(items, it), nil
}

func TestPipelineRunOrder(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&markNode{name: "first"},
		&markNode{name: "second"},
	}}
	out, err := p.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != "first" || out[1].ID != "second" {
		t.Fatalf("Run() = %v, want nodes applied in order", out)
	}
}

func TestPipelineRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&markNode{name: "first"},
		&markNode{name: "broken", err: boom},
		&markNode{name: "never"},
	}}
	_, err := p.Run(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
}
