package ratings

import (
	"reflect"
	"testing"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
)

func TestKeys(t *testing.T) {
	if got := UserKey(42); got != "u42" {
		t.Errorf("UserKey = %q", got)
	}
	if got := MovieKey(7); got != "m7" {
		t.Errorf("MovieKey = %q", got)
	}
	if bipartite.Classify(MovieKey(7), bipartite.DefaultPrimaryPrefix) != bipartite.KindPrimary {
		t.Error("movie keys must classify as primary")
	}
	if bipartite.Classify(UserKey(7), bipartite.DefaultPrimaryPrefix) != bipartite.KindSecondary {
		t.Error("user keys must classify as secondary")
	}
}

func TestMovieIDs(t *testing.T) {
	m := bipartite.NewInteractionMap()
	m.Set("u1", []string{"m3", "m1"})
	m.Set("u2", []string{"m1", "x9", "m12"})

	if got, want := MovieIDs(m), []int{3, 1, 12}; !reflect.DeepEqual(got, want) {
		t.Errorf("MovieIDs = %v, want %v", got, want)
	}
}
