// Package ratings stores MovieLens movies and ratings in MongoDB and builds
// interaction maps from them.
//
// Collections:
//
//   - movies: {movie_id, title, genres, release_date, ratings_count, inverse_popularity}
//   - ratings: {user_id, movie_id, rating, rated_at}
//
// A rating of [PositiveRating] or more links a user to a movie. Users
// become "u<id>" and movies "m<id>" in the interaction map, so movies are
// the primary nodes of the rendered graph.
package ratings

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/movielens"
)

const (
	// PositiveRating is the lowest rating that counts as liking a movie.
	PositiveRating = 3

	// ImportChunkSize is the number of documents per InsertMany call.
	ImportChunkSize = 150

	moviesCollection  = "movies"
	ratingsCollection = "ratings"
)

// MovieDoc is a document of the movies collection.
type MovieDoc struct {
	MovieID     int       `bson:"movie_id"`
	Title       string    `bson:"title"`
	Genres      []string  `bson:"genres"`
	ReleaseDate time.Time `bson:"release_date,omitempty"`

	// Computed at import over all ratings, positive or not.
	RatingsCount      int     `bson:"ratings_count"`
	InversePopularity float64 `bson:"inverse_popularity"`
}

// RatingDoc is a document of the ratings collection.
type RatingDoc struct {
	UserID  int       `bson:"user_id"`
	MovieID int       `bson:"movie_id"`
	Rating  int       `bson:"rating"`
	RatedAt time.Time `bson:"rated_at"`
}

// Store is a MongoDB-backed ratings store. It is safe for concurrent use.
type Store struct {
	client  *mongo.Client
	movies  *mongo.Collection
	ratings *mongo.Collection
}

// Open connects to uri and pings the server.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "ping mongo")
	}
	db := client.Database(database)
	return &Store{
		client:  client,
		movies:  db.Collection(moviesCollection),
		ratings: db.Collection(ratingsCollection),
	}, nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes InteractionMap, EgoGraph and Titles rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.movies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "movie_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "index movies")
	}
	if _, err := s.ratings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "rating", Value: 1}}},
		{Keys: bson.D{{Key: "movie_id", Value: 1}}},
	}); err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "index ratings")
	}
	return nil
}

// ImportStats reports how many documents Import wrote.
type ImportStats struct {
	Movies  int
	Ratings int
}

// Import replaces the store's content with ds. Progress, when non-nil, is
// called after every chunk with the running totals.
func (s *Store) Import(ctx context.Context, ds *movielens.Dataset, progress func(ImportStats)) (ImportStats, error) {
	var stats ImportStats
	if progress == nil {
		progress = func(ImportStats) {}
	}

	for _, c := range []*mongo.Collection{s.movies, s.ratings} {
		if err := c.Drop(ctx); err != nil {
			return stats, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "drop %s", c.Name())
		}
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return stats, err
	}

	counts := make(map[int]int, len(ds.Movies))
	for _, r := range ds.Ratings {
		counts[r.MovieID]++
	}
	movies := make([]any, len(ds.Movies))
	for i, m := range ds.Movies {
		movies[i] = MovieDoc{
			MovieID:           m.ID,
			Title:             m.Title,
			Genres:            m.GenreNames(ds.Genres),
			ReleaseDate:       m.ReleaseDate,
			RatingsCount:      counts[m.ID],
			InversePopularity: InversePopularity(counts[m.ID]),
		}
	}
	err := insertChunked(ctx, s.movies, movies, func(n int) {
		stats.Movies += n
		progress(stats)
	})
	if err != nil {
		return stats, err
	}

	ratings := make([]any, len(ds.Ratings))
	for i, r := range ds.Ratings {
		ratings[i] = RatingDoc{UserID: r.UserID, MovieID: r.MovieID, Rating: r.Rating, RatedAt: r.RatedAt}
	}
	err = insertChunked(ctx, s.ratings, ratings, func(n int) {
		stats.Ratings += n
		progress(stats)
	})
	return stats, err
}

func insertChunked(ctx context.Context, c *mongo.Collection, docs []any, done func(int)) error {
	for chunk := range slices.Chunk(docs, ImportChunkSize) {
		res, err := c.InsertMany(ctx, chunk, options.InsertMany().SetOrdered(true))
		if err != nil {
			return mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "insert into %s", c.Name())
		}
		done(len(res.InsertedIDs))
	}
	return nil
}

// InteractionMap returns "u<id>" -> ["m<id>", ...] for the positive ratings
// of userIDs. Users appear in request order, movies by ascending id. Users
// without positive ratings are present with an empty list.
func (s *Store) InteractionMap(ctx context.Context, userIDs []int) (*bipartite.InteractionMap, error) {
	docs, err := s.likedBy(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int][]string, len(userIDs))
	for _, d := range docs {
		byUser[d.UserID] = append(byUser[d.UserID], MovieKey(d.MovieID))
	}
	m := bipartite.NewInteractionMap()
	for _, u := range userIDs {
		movies := byUser[u]
		if movies == nil {
			movies = []string{}
		}
		m.Set(UserKey(u), movies)
	}
	return m, nil
}

// positiveRatings returns the positive ratings whose field is one of ids,
// sorted by user then movie.
func (s *Store) positiveRatings(ctx context.Context, field string, ids []int) ([]RatingDoc, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.M{
		field:    bson.M{"$in": ids},
		"rating": bson.M{"$gte": PositiveRating},
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "user_id": 1, "movie_id": 1}).
		SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}})

	cur, err := s.ratings.Find(ctx, filter, opts)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "query ratings")
	}
	var docs []RatingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "read ratings")
	}
	return docs, nil
}

// Titles returns display labels keyed by "m<id>" for the given movies.
// Unknown ids are left out.
func (s *Store) Titles(ctx context.Context, movieIDs []int) (map[string]string, error) {
	cur, err := s.movies.Find(ctx,
		bson.M{"movie_id": bson.M{"$in": movieIDs}},
		options.Find().SetProjection(bson.M{"_id": 0, "movie_id": 1, "title": 1}),
	)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "query movies")
	}
	var docs []MovieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "read movies")
	}
	titles := make(map[string]string, len(docs))
	for _, d := range docs {
		titles[MovieKey(d.MovieID)] = d.Title
	}
	return titles, nil
}

// UserKey is the interaction map key of a user.
func UserKey(id int) string { return "u" + strconv.Itoa(id) }

// MovieKey is the interaction map value of a movie.
func MovieKey(id int) string { return "m" + strconv.Itoa(id) }

// MovieIDs extracts the movie ids referenced by m.
func MovieIDs(m *bipartite.InteractionMap) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, k := range m.Keys() {
		for _, t := range m.Targets(k) {
			var id int
			if _, err := fmt.Sscanf(t, "m%d", &id); err != nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
