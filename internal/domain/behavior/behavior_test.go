package behavior

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/shopdex/internal/domain"
)

func TestAction_Weight(t *testing.T) {
	tests := []struct {
		a    Action
		want int64
	}{
		{View, 1},
		{AddToCart, 2},
		{Purchase, 3},
		{Action("wishlist"), 0},
	}
	for _, tt := range tests {
		if got := tt.a.Weight(); got != tt.want {
			t.Errorf("%q.Weight() = %d, want %d", tt.a, got, tt.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" PURCHASE ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != Purchase {
		t.Errorf("ParseAction() = %q", a)
	}

	_, err = ParseAction("wishlist")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	p := NewProfile(map[string]int64{"a": 3, "b": 1, "c": 0})

	if p.Products() != 2 {
		t.Errorf("Products() = %d, want 2", p.Products())
	}
	if !p.Has("a") || p.Has("c") {
		t.Error("Has() mismatch")
	}
	if p.Weight("a") != 3 {
		t.Errorf("Weight(a) = %d", p.Weight("a"))
	}

	var sum int64
	p.Each(func(_ string, w int64) { sum += w })
	if sum != 4 {
		t.Errorf("sum of weights = %d, want 4", sum)
	}

	if !NewProfile(nil).IsEmpty() {
		t.Error("empty profile not reported empty")
	}
}
