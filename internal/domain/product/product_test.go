package product

import (
	"strings"
	"testing"
)

func validAttrs() Attrs {
	return Attrs{
		Title:       "Wireless Bluetooth Headphones",
		Description: "Over-ear, noise cancelling",
		Price:       8000,
		Rating:      4.5,
		Tags:        []string{"audio", "wireless"},
		Stock:       3,
	}
}

func TestNew_Valid(t *testing.T) {
	p, err := New("prod-1", validAttrs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() != "prod-1" {
		t.Errorf("ID() = %q", p.ID())
	}
	if p.Title() != "Wireless Bluetooth Headphones" {
		t.Errorf("Title() = %q", p.Title())
	}
	if p.Price() != 8000 {
		t.Errorf("Price() = %d", p.Price())
	}
	if p.Rating() != 4.5 {
		t.Errorf("Rating() = %v", p.Rating())
	}
	if len(p.Tags()) != 2 || p.Tags()[0] != "audio" {
		t.Errorf("Tags() = %v", p.Tags())
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		mutate func(*Attrs)
	}{
		{"empty id", "", func(*Attrs) {}},
		{"long id", strings.Repeat("a", 257), func(*Attrs) {}},
		{"bad id chars", "a b", func(*Attrs) {}},
		{"empty title", "p", func(a *Attrs) { a.Title = "" }},
		{"negative price", "p", func(a *Attrs) { a.Price = -1 }},
		{"negative stock", "p", func(a *Attrs) { a.Stock = -1 }},
		{"rating above max", "p", func(a *Attrs) { a.Rating = 5.01 }},
		{"rating below min", "p", func(a *Attrs) { a.Rating = -0.1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := validAttrs()
			tc.mutate(&a)
			if _, err := New(tc.id, a); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNew_RatingBoundsInclusive(t *testing.T) {
	for _, r := range []float64{MinRating, MaxRating} {
		a := validAttrs()
		a.Rating = r
		if _, err := New("p", a); err != nil {
			t.Errorf("rating %v: unexpected error: %v", r, err)
		}
	}
}

func TestReconstruct_ClonesTags(t *testing.T) {
	tags := []string{"audio"}
	p := Reconstruct("p", Attrs{Title: "x", Tags: tags})

	tags[0] = "mutated"
	if p.Tags()[0] != "audio" {
		t.Error("input tag mutation leaked into product")
	}

	out := p.Tags()
	out[0] = "mutated"
	if p.Tags()[0] != "audio" {
		t.Error("Tags() result mutation leaked into product")
	}
}

func TestAttrs_RoundTrip(t *testing.T) {
	p, _ := New("p", validAttrs())
	q := Reconstruct(p.ID(), p.Attrs())
	if q.Title() != p.Title() || q.Price() != p.Price() || q.Rating() != p.Rating() {
		t.Errorf("round trip mismatch: %+v vs %+v", q, p)
	}
}
