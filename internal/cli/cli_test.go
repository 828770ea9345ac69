package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/movielens"
)

// runCLI executes the root command with args and returns what the command
// wrote to its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, png,,dot", []string{"svg", "png", "dot"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "maps/ratings.json", "ratings"},
		{"", "-", "moviegraph"},
		{"out/graph.svg", "ratings.json", "out/graph"},
		{"out/graph", "ratings.json", "out/graph"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "map.json")
	writeFile(t, in, `{"u1":["m1","m2"],"u2":["m2"]}`)

	out := filepath.Join(dir, "graph.svg")
	if _, err := runCLI(t, "render", in, "-o", out, "--edges"); err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(doc, []byte("<circle")); n != 4 {
		t.Errorf("circles = %d, want 4", n)
	}
	if n := bytes.Count(doc, []byte("<line")); n != 3 {
		t.Errorf("lines = %d, want 3", n)
	}
}

func TestRenderCommandMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "map.json")
	writeFile(t, in, `{"u1":["m1"]}`)

	base := filepath.Join(dir, "out")
	if _, err := runCLI(t, "render", in, "-o", base, "-f", "svg,json,dot"); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, name := range []string{"out.svg", "out.json", "out.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "not json")

	tests := []struct {
		name string
		args []string
		code mgerrors.Code
	}{
		{"malformed", []string{"render", bad, "-o", filepath.Join(dir, "x.svg")}, mgerrors.ErrCodeMalformedInput},
		{"missing file", []string{"render", filepath.Join(dir, "nope.json")}, mgerrors.ErrCodeFileNotFound},
		{"bad format", []string{"render", bad, "-f", "gif"}, mgerrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !mgerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "x.svg")); !os.IsNotExist(err) {
		t.Error("failed render wrote a document")
	}
}

func TestVennCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, movielens.GenreFile), "unknown|0\nAction|1\nComedy|2\nDrama|3\n")
	writeFile(t, filepath.Join(dir, movielens.ItemFile),
		"1|Toy Story (1995)|01-Jan-1995||http://x|0|0|1|0\n"+
			"2|GoldenEye (1995)|01-Jan-1995||http://x|0|1|0|0\n"+
			"3|Sabrina (1995)|01-Jan-1995||http://x|0|0|1|1\n"+
			"4|Heat (1995)|01-Jan-1995||http://x|0|0|1|1\n")

	for _, args := range [][]string{
		{"venn", dir},
		{"venn", filepath.Join(dir, movielens.GenreFile), filepath.Join(dir, movielens.ItemFile)},
	} {
		out, err := runCLI(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		var sets []movielens.VennSet
		if err := json.Unmarshal([]byte(out), &sets); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		want := []movielens.VennSet{
			{Sets: []string{"Comedy", "Drama"}, Size: 2},
			{Sets: []string{"Action"}, Size: 1},
			{Sets: []string{"Comedy"}, Size: 1},
		}
		if !reflect.DeepEqual(sets, want) {
			t.Errorf("%v: sets = %+v, want %+v", args, sets, want)
		}
	}
}

func TestVennCommandMissingFile(t *testing.T) {
	_, err := runCLI(t, "venn", t.TempDir())
	if !mgerrors.Is(err, mgerrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReorderCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "m.json")
	// Rows 0 and 2 are identical, so the ordering must put them side by side.
	writeFile(t, in, `[[0,9,0,9],[9,0,9,1],[0,9,0,9],[9,1,9,0]]`)

	out := filepath.Join(dir, "ordered-matrix.json")
	if _, err := runCLI(t, "reorder", in, "-o", out); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var m [][]float64
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != 4 {
		t.Fatalf("rows = %d, want 4", len(m))
	}
	// A symmetric input stays symmetric with a zero diagonal after a
	// simultaneous row/column permutation.
	for i := range m {
		if m[i][i] != 0 {
			t.Errorf("m[%d][%d] = %v, want 0", i, i, m[i][i])
		}
		for j := range m {
			if m[i][j] != m[j][i] {
				t.Errorf("m[%d][%d] != m[%d][%d]", i, j, j, i)
			}
		}
	}
	adjacent := false
	for i := 0; i+1 < len(m); i++ {
		if reflect.DeepEqual(rowPattern(m[i]), rowPattern(m[i+1])) {
			adjacent = true
		}
	}
	if !adjacent {
		t.Errorf("identical rows are not adjacent:\n%v", m)
	}
}

// rowPattern is the sorted multiset of a row, which identical rows share
// after permutation.
func rowPattern(row []float64) string {
	var b strings.Builder
	counts := map[float64]int{}
	for _, v := range row {
		counts[v]++
	}
	for _, v := range []float64{0, 1, 9} {
		b.WriteString(strings.Repeat("x", counts[v]) + "|")
	}
	return b.String()
}

func TestReorderCommandRejectsRaggedMatrix(t *testing.T) {
	in := filepath.Join(t.TempDir(), "m.json")
	writeFile(t, in, `[[0,1],[1]]`)
	if _, err := runCLI(t, "reorder", in); !mgerrors.Is(err, mgerrors.ErrCodeMalformedInput) {
		t.Errorf("error = %v, want MALFORMED_INPUT", err)
	}
}

func TestImportRequiresMongoURI(t *testing.T) {
	t.Setenv("MOVIEGRAPH_MONGO_URI", "")
	if _, err := runCLI(t, "import", t.TempDir()); !mgerrors.Is(err, mgerrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfigErrorsSurface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[server]\nnope = 1\n")
	if _, err := runCLI(t, "--config", path, "cache", "path"); !mgerrors.Is(err, mgerrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}
