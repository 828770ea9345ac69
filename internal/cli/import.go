package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/movielens"
	"github.com/matzehuels/moviegraph/pkg/ratings"
)

// importCommand creates the import command that loads a MovieLens 100k
// directory into MongoDB for /users/graph.
func (c *CLI) importCommand() *cobra.Command {
	var mongoURI, database string

	cmd := &cobra.Command{
		Use:   "import [movielens-dir]",
		Short: "Import a MovieLens dataset into MongoDB",
		Long: `Import reads u.genre, u.item and u.data from a MovieLens 100k directory and
replaces the movies and ratings collections of the configured database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("mongo-uri") {
				c.cfg.Mongo.URI = mongoURI
			}
			if flags.Changed("database") {
				c.cfg.Mongo.Database = database
			}
			if c.cfg.Mongo.URI == "" {
				return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "no MongoDB URI: pass --mongo-uri or set [mongo] uri")
			}
			return c.runImport(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI")
	cmd.Flags().StringVar(&database, "database", "", "database name (default moviegraph)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, dir string) error {
	prog := newProgress(c.Logger)
	ds, err := movielens.Load(dir)
	if err != nil {
		return err
	}
	prog.done("read dataset", "genres", len(ds.Genres), "movies", len(ds.Movies), "ratings", len(ds.Ratings))

	octx, cancel := c.mongoContext(ctx)
	store, err := ratings.Open(octx, c.cfg.Mongo.URI, c.cfg.Mongo.Database)
	cancel()
	if err != nil {
		return err
	}
	defer closeStore(c, store)

	spinner := newSpinnerWithContext(ctx, "Importing...")
	spinner.Start()
	stats, err := store.Import(ctx, ds, func(s ratings.ImportStats) {
		spinner.Update("Importing... %d/%d movies, %d/%d ratings", s.Movies, len(ds.Movies), s.Ratings, len(ds.Ratings))
	})
	if err != nil {
		spinner.StopWithError("Import failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Imported into %s", c.cfg.Mongo.Database))
	printKeyValue("movies", fmt.Sprint(stats.Movies))
	printKeyValue("ratings", fmt.Sprint(stats.Ratings))
	printNextStep("Serve user graphs", fmt.Sprintf("%s serve --mongo-uri %s", appName, c.cfg.Mongo.URI))
	return nil
}
