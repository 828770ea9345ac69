package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moviegraph/pkg/movielens"
)

// vennCommand creates the venn command, which counts movies per exact
// combination of genres.
func (c *CLI) vennCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "venn [u.genre] [u.item]",
		Short: "Count movies per genre combination",
		Long: `Venn reads the MovieLens genre list and movie list and prints, for every
combination of genres that occurs, how many movies have exactly that
combination:

  [{"sets":["Comedy","Drama"],"size":42}, ...]

With a single argument it is taken as the dataset directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			genrePath, itemPath := args[0], ""
			if len(args) == 1 {
				genrePath = filepath.Join(args[0], movielens.GenreFile)
				itemPath = filepath.Join(args[0], movielens.ItemFile)
			} else {
				itemPath = args[1]
			}

			genres, err := movielens.ReadFile(genrePath, movielens.ReadGenres)
			if err != nil {
				return err
			}
			movies, err := movielens.ReadFile(itemPath, movielens.ReadMovies)
			if err != nil {
				return err
			}

			sets := movielens.VennSets(genres, movies)
			c.Logger.Debug("venn sets", "genres", len(genres), "movies", len(movies), "sets", len(sets))

			out, err := json.Marshal(sets)
			if err != nil {
				return err
			}
			return c.writeOutput(output, out)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// writeOutput writes data to path, or to the command output when path is
// empty.
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == "" {
		data = append(data, '\n')
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
