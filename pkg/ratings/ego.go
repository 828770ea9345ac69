package ratings

import (
	"context"
	"math"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// MaxEgoDistance bounds how far EgoGraph expands. Every hop multiplies the
// graph size by the average degree.
const MaxEgoDistance = 4

// InversePopularity scores a movie rated count times. Rarely rated movies
// score close to 1, the most rated ones close to 0.
func InversePopularity(count int) float64 {
	return 1 / float64(1+count)
}

// ValidateEgo checks the parameters of an ego graph query.
func ValidateEgo(userID, distance int, minInversePopularity float64) error {
	switch {
	case userID <= 0:
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "user id must be positive, got %d", userID)
	case distance < 0 || distance > MaxEgoDistance:
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "distance must be in [0, %d], got %d", MaxEgoDistance, distance)
	case math.IsNaN(minInversePopularity) || minInversePopularity < 0 || minInversePopularity > 1:
		return mgerrors.New(mgerrors.ErrCodeInvalidInput,
			"minimum inverse popularity must be in [0, 1], got %g", minInversePopularity)
	}
	return nil
}

// neighbourhood answers the lookups an ego expansion needs. Ratings are
// positive ones only.
type neighbourhood interface {
	likedBy(ctx context.Context, userIDs []int) ([]RatingDoc, error)
	fansOf(ctx context.Context, movieIDs []int) ([]RatingDoc, error)
	obscure(ctx context.Context, movieIDs []int, threshold float64) ([]int, error)
}

// EgoGraph returns the neighbourhood of userID as an interaction map.
//
// Distance 0 is the user alone, 1 adds the movies they like, 2 the other
// fans of those movies and 3 the movies those fans like; every further
// hop alternates the same way. When minInversePopularity is positive,
// movies whose [InversePopularity] falls below it are never added.
//
// The result holds every positive rating between the collected users and
// movies. The user comes first, then the other fans by id; movies are
// sorted by id.
func (s *Store) EgoGraph(ctx context.Context, userID, distance int, minInversePopularity float64) (*bipartite.InteractionMap, error) {
	return egoGraph(ctx, s, userID, distance, minInversePopularity)
}

func egoGraph(ctx context.Context, n neighbourhood, userID, distance int, minInv float64) (*bipartite.InteractionMap, error) {
	if err := ValidateEgo(userID, distance, minInv); err != nil {
		return nil, err
	}

	fans := map[int]bool{userID: true}
	movies := map[int]bool{}
	for hop := 1; hop <= distance; hop++ {
		if hop%2 == 1 {
			liked, err := n.likedBy(ctx, sortedIDs(fans))
			if err != nil {
				return nil, err
			}
			var added []int
			seen := make(map[int]bool)
			for _, r := range liked {
				if !movies[r.MovieID] && !seen[r.MovieID] {
					seen[r.MovieID] = true
					added = append(added, r.MovieID)
				}
			}
			if minInv > 0 && len(added) > 0 {
				if added, err = n.obscure(ctx, added, minInv); err != nil {
					return nil, err
				}
			}
			for _, id := range added {
				movies[id] = true
			}
			continue
		}

		if len(movies) == 0 {
			break
		}
		rated, err := n.fansOf(ctx, sortedIDs(movies))
		if err != nil {
			return nil, err
		}
		for _, r := range rated {
			fans[r.UserID] = true
		}
	}

	byUser := make(map[int][]string, len(fans))
	if len(movies) > 0 {
		liked, err := n.likedBy(ctx, sortedIDs(fans))
		if err != nil {
			return nil, err
		}
		slices.SortFunc(liked, func(a, b RatingDoc) int { return a.MovieID - b.MovieID })
		for _, r := range liked {
			if movies[r.MovieID] {
				byUser[r.UserID] = append(byUser[r.UserID], MovieKey(r.MovieID))
			}
		}
	}

	m := bipartite.NewInteractionMap()
	m.Set(UserKey(userID), byUser[userID])
	for _, u := range sortedIDs(fans) {
		if u != userID {
			m.Set(UserKey(u), byUser[u])
		}
	}
	return m, nil
}

func sortedIDs(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) likedBy(ctx context.Context, userIDs []int) ([]RatingDoc, error) {
	return s.positiveRatings(ctx, "user_id", userIDs)
}

func (s *Store) fansOf(ctx context.Context, movieIDs []int) ([]RatingDoc, error) {
	return s.positiveRatings(ctx, "movie_id", movieIDs)
}

// obscure keeps the movies whose stored inverse popularity is at least threshold.
func (s *Store) obscure(ctx context.Context, movieIDs []int, threshold float64) ([]int, error) {
	cur, err := s.movies.Find(ctx,
		bson.M{
			"movie_id":           bson.M{"$in": movieIDs},
			"inverse_popularity": bson.M{"$gte": threshold},
		},
		options.Find().
			SetProjection(bson.M{"_id": 0, "movie_id": 1}).
			SetSort(bson.D{{Key: "movie_id", Value: 1}}),
	)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "query movie popularity")
	}
	var docs []MovieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "read movie popularity")
	}
	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.MovieID
	}
	return ids, nil
}
