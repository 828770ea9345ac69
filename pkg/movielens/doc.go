// Package movielens reads the MovieLens 100k data files.
//
// Supported files:
//
//   - u.genre: "name|index" lines
//   - u.item: "id|title|release|video release|IMDb URL|19 genre flags",
//     ISO-8859-1 encoded
//   - u.data: tab-separated "user id, item id, rating, timestamp"
//
// [VennSets] counts how many movies share each exact combination of genres,
// the input of an area-proportional Venn diagram.
package movielens
