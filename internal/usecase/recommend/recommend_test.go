package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
)

// --- Mocks ---

type mockBehaviors struct {
	profiles map[string]map[string]int64
	err      error
	calls    int
}

func (m *mockBehaviors) Profile(_ context.Context, userID string) (behavior.Profile, error) {
	m.calls++
	if m.err != nil {
		return behavior.Profile{}, m.err
	}
	return behavior.NewProfile(m.profiles[userID]), nil
}

func prod(id string, rating float64, tags ...string) product.Product {
	return product.Reconstruct(id, product.Attrs{Title: id, Rating: rating, Tags: tags})
}

func ids(rs []result.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func equalIDs(t *testing.T, got []result.Result, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func catalog() []product.Product {
	return []product.Product{
		prod("headphones", 4.5, "audio", "wireless"),
		prod("speaker", 4.2, "audio"),
		prod("earbuds", 4.8, "audio", "wireless"),
		prod("mouse", 4.0, "gaming"),
		prod("keyboard", 4.0, "gaming", "rgb"),
		prod("monitor", 3.9, "display"),
	}
}

// --- Popular ---

func TestRankPopular_OrderAndTieBreak(t *testing.T) {
	got := RankPopular(catalog(), 10)
	equalIDs(t, got, "earbuds", "headphones", "speaker", "keyboard", "mouse", "monitor")

	for i := 1; i < len(got); i++ {
		if got[i-1].Score() < got[i].Score() {
			t.Errorf("scores not descending at %d", i)
		}
	}
	if got[0].Score() != 4.8 {
		t.Errorf("score = %v, want rating 4.8", got[0].Score())
	}
}

func TestRankPopular_Limit(t *testing.T) {
	for _, limit := range []int{0, 1, 3, 6, 20} {
		got := RankPopular(catalog(), limit)
		want := limit
		if want > 6 {
			want = 6
		}
		if len(got) != want {
			t.Errorf("limit %d: len = %d, want %d", limit, len(got), want)
		}
	}
	if got := RankPopular(catalog(), -5); len(got) != 0 {
		t.Errorf("negative limit: len = %d", len(got))
	}
}

func TestRankPopular_EmptyCatalog(t *testing.T) {
	got := RankPopular(nil, 10)
	if got == nil || len(got) != 0 {
		t.Errorf("RankPopular(nil) = %v, want empty", got)
	}
}

func TestPopular_IgnoresUser(t *testing.T) {
	a, _ := Popular{}.Recommend(context.Background(), catalog(), "", 3)
	b, _ := Popular{}.Recommend(context.Background(), catalog(), "u-1", 3)
	equalIDs(t, b, ids(a)...)
}

// --- Personalized ---

func TestPersonalized_TopTagsAndExclusion(t *testing.T) {
	beh := &mockBehaviors{profiles: map[string]map[string]int64{
		"u-1": {"headphones": behavior.Purchase.Weight()},
	}}
	p := NewPersonalized(beh, 0)

	got, err := p.Recommend(context.Background(), catalog(), "u-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// audio + wireless preferred; headphones already interacted.
	equalIDs(t, got, "earbuds", "speaker")
}

func TestPersonalized_TopTagsLimit(t *testing.T) {
	beh := &mockBehaviors{profiles: map[string]map[string]int64{
		// gaming weight 2+1=3, rgb 1, audio 1, wireless 0.
		"u-1": {"mouse": 2, "keyboard": 1, "speaker": 1},
	}}
	p := NewPersonalized(beh, 1)

	got, err := p.Recommend(context.Background(), catalog(), "u-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no unseen gaming products, got %v", ids(got))
	}

	p = NewPersonalized(beh, 3)
	got, _ = p.Recommend(context.Background(), catalog(), "u-1", 10)
	// audio is within top 3 (gaming=3, audio=1, rgb=1 by name).
	equalIDs(t, got, "earbuds", "headphones")
}

func TestPersonalized_UnknownUser(t *testing.T) {
	p := NewPersonalized(&mockBehaviors{}, 5)
	got, err := p.Recommend(context.Background(), catalog(), "ghost", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", ids(got))
	}
}

func TestPersonalized_StoreError(t *testing.T) {
	storeErr := errors.New("redis down")
	p := NewPersonalized(&mockBehaviors{err: storeErr}, 5)
	_, err := p.Recommend(context.Background(), catalog(), "u-1", 10)
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

// --- Selector ---

func TestSelector_NoBehaviorStore(t *testing.T) {
	s := NewSelector(nil)
	got, kind := s.Select(context.Background(), catalog(), "u-1", 10)
	if kind != KindPopular {
		t.Errorf("kind = %q", kind)
	}
	equalIDs(t, got, ids(RankPopular(catalog(), 10))...)
	if s.Kind() != KindPopular {
		t.Errorf("Kind() = %q", s.Kind())
	}
}

func TestSelector_AnonymousSkipsStore(t *testing.T) {
	beh := &mockBehaviors{}
	s := NewSelector(NewPersonalized(beh, 5))

	_, kind := s.Select(context.Background(), catalog(), "", 10)
	if kind != KindPopular {
		t.Errorf("kind = %q", kind)
	}
	if beh.calls != 0 {
		t.Errorf("behavior store called %d times for anonymous user", beh.calls)
	}
}

func TestSelector_NoBehaviorData(t *testing.T) {
	s := NewSelector(NewPersonalized(&mockBehaviors{}, 5))
	got, kind := s.Select(context.Background(), catalog(), "new-user", 10)
	if kind != KindPopular || len(got) != 6 {
		t.Errorf("kind = %q, len = %d", kind, len(got))
	}
}

func TestSelector_Personalized(t *testing.T) {
	beh := &mockBehaviors{profiles: map[string]map[string]int64{
		"u-1": {"mouse": 1},
	}}
	s := NewSelector(NewPersonalized(beh, 5))

	got, err := s.Recommend(context.Background(), catalog(), "u-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalIDs(t, got, "keyboard")

	_, kind := s.Select(context.Background(), catalog(), "u-1", 10)
	if kind != KindPersonalized {
		t.Errorf("kind = %q", kind)
	}
}

func TestSelector_EmptyPersonalizedFallsBack(t *testing.T) {
	beh := &mockBehaviors{profiles: map[string]map[string]int64{
		"u-1": {"monitor": 3},
	}}
	s := NewSelector(NewPersonalized(beh, 5))

	got, kind := s.Select(context.Background(), catalog(), "u-1", 2)
	if kind != KindPopular {
		t.Errorf("kind = %q", kind)
	}
	equalIDs(t, got, "earbuds", "headphones")
}

func TestSelector_StoreErrorFallsBack(t *testing.T) {
	s := NewSelector(NewPersonalized(&mockBehaviors{err: errors.New("boom")}, 5))
	got, err := s.Recommend(context.Background(), catalog(), "u-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalIDs(t, got, "earbuds", "headphones", "speaker")
}
