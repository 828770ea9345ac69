package movielens

import (
	"slices"
	"strings"
)

// VennSet is the number of movies whose genres are exactly Sets.
type VennSet struct {
	Sets []string `json:"sets"`
	Size int      `json:"size"`
}

// VennSets groups movies by their sorted set of genre names. Movies with
// no flag set form the entry with an empty Sets. The result is sorted by
// descending size, then by joined set names.
func VennSets(genres []Genre, movies []Movie) []VennSet {
	index := make(map[string]int)
	var out []VennSet
	for _, m := range movies {
		names := m.GenreNames(genres)
		slices.Sort(names)
		key := strings.Join(names, "|")
		if i, ok := index[key]; ok {
			out[i].Size++
			continue
		}
		if names == nil {
			names = []string{}
		}
		index[key] = len(out)
		out = append(out, VennSet{Sets: names, Size: 1})
	}

	slices.SortStableFunc(out, func(a, b VennSet) int {
		if a.Size != b.Size {
			return b.Size - a.Size
		}
		return strings.Compare(strings.Join(a.Sets, "|"), strings.Join(b.Sets, "|"))
	})
	return out
}
