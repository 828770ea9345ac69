package ratings

import (
	"context"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// memNeighbourhood answers ego lookups from an in-memory rating list.
type memNeighbourhood struct {
	ratings    []RatingDoc
	popularity map[int]float64 // inverse popularity by movie; missing means 1
	err        error
	queries    int
}

func (n *memNeighbourhood) positive(field func(RatingDoc) int, ids []int) ([]RatingDoc, error) {
	n.queries++
	if n.err != nil {
		return nil, n.err
	}
	var out []RatingDoc
	for _, r := range n.ratings {
		if r.Rating >= PositiveRating && slices.Contains(ids, field(r)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (n *memNeighbourhood) likedBy(_ context.Context, userIDs []int) ([]RatingDoc, error) {
	return n.positive(func(r RatingDoc) int { return r.UserID }, userIDs)
}

func (n *memNeighbourhood) fansOf(_ context.Context, movieIDs []int) ([]RatingDoc, error) {
	return n.positive(func(r RatingDoc) int { return r.MovieID }, movieIDs)
}

func (n *memNeighbourhood) obscure(_ context.Context, movieIDs []int, threshold float64) ([]int, error) {
	var out []int
	for _, id := range movieIDs {
		p, ok := n.popularity[id]
		if !ok || p >= threshold {
			out = append(out, id)
		}
	}
	return out, nil
}

// egoFixture: u1 likes m1 and m2; u2 likes m1 and m3; u3 likes m2 and the
// widely rated m4; u4 likes m3; u5 likes only m5; u6 dislikes m1.
func egoFixture() *memNeighbourhood {
	like := func(u, m int) RatingDoc { return RatingDoc{UserID: u, MovieID: m, Rating: 4} }
	return &memNeighbourhood{
		ratings: []RatingDoc{
			like(3, 4), like(1, 2), like(1, 1), like(2, 3), like(2, 1),
			like(3, 2), like(4, 3), like(5, 5),
			{UserID: 6, MovieID: 1, Rating: 1},
		},
		popularity: map[int]float64{1: 0.5, 2: 0.5, 3: 0.5, 4: InversePopularity(99), 5: 0.5},
	}
}

func asMap(m *bipartite.InteractionMap) (keys []string, targets map[string][]string) {
	targets = make(map[string][]string)
	for _, k := range m.Keys() {
		targets[k] = append([]string{}, m.Targets(k)...)
	}
	return m.Keys(), targets
}

func TestEgoGraphDistances(t *testing.T) {
	tests := []struct {
		name     string
		distance int
		minInv   float64
		keys     []string
		targets  map[string][]string
	}{
		{
			name: "ego only", distance: 0,
			keys:    []string{"u1"},
			targets: map[string][]string{"u1": {}},
		},
		{
			name: "liked movies", distance: 1,
			keys:    []string{"u1"},
			targets: map[string][]string{"u1": {"m1", "m2"}},
		},
		{
			name: "fans of liked movies", distance: 2,
			keys: []string{"u1", "u2", "u3"},
			targets: map[string][]string{
				"u1": {"m1", "m2"},
				"u2": {"m1"},
				"u3": {"m2"},
			},
		},
		{
			name: "movies of fans", distance: 3,
			keys: []string{"u1", "u2", "u3"},
			targets: map[string][]string{
				"u1": {"m1", "m2"},
				"u2": {"m1", "m3"},
				"u3": {"m2", "m4"},
			},
		},
		{
			name: "popular movies filtered", distance: 3, minInv: 0.1,
			keys: []string{"u1", "u2", "u3"},
			targets: map[string][]string{
				"u1": {"m1", "m2"},
				"u2": {"m1", "m3"},
				"u3": {"m2"},
			},
		},
		{
			name: "fans of fans' movies", distance: 4,
			keys: []string{"u1", "u2", "u3", "u4"},
			targets: map[string][]string{
				"u1": {"m1", "m2"},
				"u2": {"m1", "m3"},
				"u3": {"m2", "m4"},
				"u4": {"m3"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := egoGraph(context.Background(), egoFixture(), 1, tt.distance, tt.minInv)
			if err != nil {
				t.Fatalf("egoGraph: %v", err)
			}
			keys, targets := asMap(m)
			if !reflect.DeepEqual(keys, tt.keys) {
				t.Errorf("keys = %v, want %v", keys, tt.keys)
			}
			if !reflect.DeepEqual(targets, tt.targets) {
				t.Errorf("targets = %v, want %v", targets, tt.targets)
			}
		})
	}
}

func TestEgoGraphFiltersOwnMovies(t *testing.T) {
	n := egoFixture()
	n.popularity[2] = InversePopularity(500)

	m, err := egoGraph(context.Background(), n, 1, 2, 0.01)
	if err != nil {
		t.Fatalf("egoGraph: %v", err)
	}
	keys, targets := asMap(m)
	if !reflect.DeepEqual(keys, []string{"u1", "u2"}) || !reflect.DeepEqual(targets["u1"], []string{"m1"}) {
		t.Errorf("got %v %v, want the popular m2 and its fan u3 left out", keys, targets)
	}
}

func TestEgoGraphUnknownUser(t *testing.T) {
	m, err := egoGraph(context.Background(), egoFixture(), 42, 3, 0)
	if err != nil {
		t.Fatalf("egoGraph: %v", err)
	}
	if keys := m.Keys(); !reflect.DeepEqual(keys, []string{"u42"}) || m.PairCount() != 0 {
		t.Errorf("unknown user graph = %v with %d pairs", keys, m.PairCount())
	}
}

func TestEgoGraphDistanceZeroSkipsLookups(t *testing.T) {
	n := egoFixture()
	if _, err := egoGraph(context.Background(), n, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if n.queries != 0 {
		t.Errorf("distance 0 ran %d lookups", n.queries)
	}
}

func TestEgoGraphStorageError(t *testing.T) {
	n := egoFixture()
	n.err = mgerrors.New(mgerrors.ErrCodeStorage, "connection reset")
	_, err := egoGraph(context.Background(), n, 1, 2, 0)
	if !mgerrors.Is(err, mgerrors.ErrCodeStorage) {
		t.Errorf("error = %v, want STORAGE_ERROR", err)
	}
}

func TestValidateEgo(t *testing.T) {
	tests := []struct {
		name     string
		user     int
		distance int
		minInv   float64
		ok       bool
	}{
		{"defaults", 1, 1, 0, true},
		{"max distance", 1, MaxEgoDistance, 1, true},
		{"zero user", 0, 1, 0, false},
		{"negative distance", 1, -1, 0, false},
		{"too far", 1, MaxEgoDistance + 1, 0, false},
		{"negative threshold", 1, 1, -0.1, false},
		{"threshold above one", 1, 1, 1.5, false},
		{"nan threshold", 1, 1, math.NaN(), false},
	}
	for _, tt := range tests {
		err := ValidateEgo(tt.user, tt.distance, tt.minInv)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !mgerrors.Is(err, mgerrors.ErrCodeInvalidInput) {
			t.Errorf("%s: error = %v, want INVALID_INPUT", tt.name, err)
		}
	}
	if _, err := egoGraph(context.Background(), egoFixture(), 1, -1, 0); !mgerrors.Is(err, mgerrors.ErrCodeInvalidInput) {
		t.Errorf("egoGraph error = %v, want INVALID_INPUT", err)
	}
}

func TestInversePopularity(t *testing.T) {
	if got := InversePopularity(0); got != 1 {
		t.Errorf("InversePopularity(0) = %g, want 1", got)
	}
	if got := InversePopularity(3); got != 0.25 {
		t.Errorf("InversePopularity(3) = %g, want 0.25", got)
	}
}
