package source

import (
	"context"
	"testing"
	"time"

	"github.com/goborsa/borsa/internal/core"
)

type stubSource struct{ name string }

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Quote(ctx context.Context, symbol string) (*core.Quote, error) {
	return &core.Quote{Symbol: symbol, Last: 1}, nil
}
func (s *stubSource) History(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubSource{name: "stub"})

	got, ok := r.Get("stub")
	if !ok {
		t.Fatal("expected registered source")
	}
	if got.Name() != "stub" {
		t.Errorf("name = %s", got.Name())
	}
	if _, ok := r.Get("absent"); ok {
		t.Error("unexpected source for unknown name")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "stub" {
		t.Errorf("names = %v", names)
	}
}
