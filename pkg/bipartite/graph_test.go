package bipartite

import (
	"strings"
	"testing"
)

func mustDecode(t *testing.T, body string) *InteractionMap {
	t.Helper()
	m, err := Decode(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Decode(%s) error: %v", body, err)
	}
	return m
}

func TestBuildExample(t *testing.T) {
	g := Build(mustDecode(t, `{"u1": ["m1", "m2"], "u2": ["m2"]}`))

	wantIDs := []string{"u1", "m1", "m2", "u2"}
	if g.NodeCount() != len(wantIDs) {
		t.Fatalf("NodeCount = %d, want %d", g.NodeCount(), len(wantIDs))
	}
	for i, id := range wantIDs {
		if g.Nodes[i].ID != id {
			t.Errorf("Nodes[%d].ID = %q, want %q", i, g.Nodes[i].ID, id)
		}
	}

	wantKinds := map[string]Kind{"u1": KindSecondary, "u2": KindSecondary, "m1": KindPrimary, "m2": KindPrimary}
	for _, n := range g.Nodes {
		if n.Kind != wantKinds[n.ID] {
			t.Errorf("kind of %s = %s, want %s", n.ID, n.Kind, wantKinds[n.ID])
		}
		if n.Label != n.ID {
			t.Errorf("label of %s = %q, want id", n.ID, n.Label)
		}
	}

	wantEdges := [][2]string{{"u1", "m1"}, {"u1", "m2"}, {"u2", "m2"}}
	if g.EdgeCount() != len(wantEdges) {
		t.Fatalf("EdgeCount = %d, want %d", g.EdgeCount(), len(wantEdges))
	}
	for i, e := range g.Edges {
		src, dst := g.Nodes[e.Source].ID, g.Nodes[e.Target].ID
		if src != wantEdges[i][0] || dst != wantEdges[i][1] {
			t.Errorf("Edges[%d] = %s->%s, want %s->%s", i, src, dst, wantEdges[i][0], wantEdges[i][1])
		}
		if e.Weight != 1 {
			t.Errorf("Edges[%d].Weight = %v, want 1", i, e.Weight)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	g := Build(mustDecode(t, `{}`))
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty map: %d nodes, %d edges, want 0, 0", g.NodeCount(), g.EdgeCount())
	}
}

func TestBuildCounts(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantNodes int
		wantEdges int
	}{
		{"key without targets", `{"u1": []}`, 1, 0},
		{"repeated pair kept", `{"u1": ["m1", "m1"]}`, 2, 2},
		{"self loop kept", `{"u1": ["u1"]}`, 1, 1},
		{"id as key and value", `{"u1": ["u2"], "u2": ["u1"]}`, 2, 2},
		{"shared targets", `{"u1": ["m1","m2","m3"], "u2": ["m3","m2"], "u3": ["m1"]}`, 6, 6},
		{"within-kind edge", `{"m1": ["m2"]}`, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustDecode(t, tt.body)
			g := Build(m)
			if g.NodeCount() != tt.wantNodes {
				t.Errorf("NodeCount = %d, want %d", g.NodeCount(), tt.wantNodes)
			}
			if g.EdgeCount() != tt.wantEdges || g.EdgeCount() != m.PairCount() {
				t.Errorf("EdgeCount = %d, want %d (pairs %d)", g.EdgeCount(), tt.wantEdges, m.PairCount())
			}
			for i, e := range g.Edges {
				if e.Source < 0 || e.Source >= g.NodeCount() || e.Target < 0 || e.Target >= g.NodeCount() {
					t.Errorf("Edges[%d] = %+v has a dangling index", i, e)
				}
			}
			seen := make(map[string]bool)
			for _, n := range g.Nodes {
				if seen[n.ID] {
					t.Errorf("duplicate node %q", n.ID)
				}
				seen[n.ID] = true
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		id     string
		prefix string
		want   Kind
	}{
		{"m1", "m", KindPrimary},
		{"movie", "m", KindPrimary},
		{"u1", "m", KindSecondary},
		{"M1", "m", KindSecondary},
		{"", "m", KindSecondary},
		{"u1", "u", KindPrimary},
		{"m1", "", KindSecondary},
	}

	for _, tt := range tests {
		if got := Classify(tt.id, tt.prefix); got != tt.want {
			t.Errorf("Classify(%q, %q) = %s, want %s", tt.id, tt.prefix, got, tt.want)
		}
	}
}

func TestBuildClassificationIndependentOfPosition(t *testing.T) {
	g := Build(mustDecode(t, `{"m9": ["u1"], "u2": ["m9"]}`))
	i, ok := g.Index("m9")
	if !ok {
		t.Fatal("m9 not indexed")
	}
	if g.Nodes[i].Kind != KindPrimary {
		t.Errorf("m9 kind = %s, want primary", g.Nodes[i].Kind)
	}
	if g.CountKind(KindPrimary) != 1 || g.CountKind(KindSecondary) != 2 {
		t.Errorf("kind counts = %d/%d, want 1/2", g.CountKind(KindPrimary), g.CountKind(KindSecondary))
	}
}

func TestBuildOptions(t *testing.T) {
	m := mustDecode(t, `{"a1": ["b1"]}`)
	g := Build(m, WithPrimaryPrefix("b"), WithLabels(map[string]string{"b1": "Toy Story (1995)", "a1": ""}))

	if g.Nodes[1].Kind != KindPrimary || g.Nodes[0].Kind != KindSecondary {
		t.Errorf("kinds = %s/%s, want secondary/primary", g.Nodes[0].Kind, g.Nodes[1].Kind)
	}
	if g.Nodes[1].Label != "Toy Story (1995)" {
		t.Errorf("label = %q, want title", g.Nodes[1].Label)
	}
	if g.Nodes[0].Label != "a1" {
		t.Errorf("empty label should fall back to id, got %q", g.Nodes[0].Label)
	}
}
