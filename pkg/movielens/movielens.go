package movielens

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// Standard file names inside a MovieLens 100k directory.
const (
	GenreFile  = "u.genre"
	ItemFile   = "u.item"
	RatingFile = "u.data"
)

// itemFixedFields is the number of u.item columns before the genre flags.
const itemFixedFields = 5

// Genre is one entry of u.genre.
type Genre struct {
	Name  string
	Index int
}

// Movie is one entry of u.item.
type Movie struct {
	ID          int
	Title       string
	ReleaseDate time.Time // zero when unknown
	IMDbURL     string
	Flags       []bool // one per genre, in u.genre order
}

// Rating is one entry of u.data.
type Rating struct {
	UserID  int
	MovieID int
	Rating  int
	RatedAt time.Time
}

// ReadGenres parses u.genre. Blank lines are skipped; genres are returned
// in file order, which is the order of the u.item flag columns.
func ReadGenres(r io.Reader) ([]Genre, error) {
	var genres []Genre
	err := scanLines(r, func(n int, line string) error {
		name, idx, ok := strings.Cut(line, "|")
		if !ok {
			return lineError(GenreFile, n, "expected name|index")
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			return lineError(GenreFile, n, "bad index %q", idx)
		}
		genres = append(genres, Genre{Name: name, Index: i})
		return nil
	})
	return genres, err
}

// ReadMovies parses u.item, decoding it from ISO-8859-1.
func ReadMovies(r io.Reader) ([]Movie, error) {
	var movies []Movie
	err := scanLines(charmap.ISO8859_1.NewDecoder().Reader(r), func(n int, line string) error {
		fields := strings.Split(line, "|")
		if len(fields) < itemFixedFields {
			return lineError(ItemFile, n, "expected at least %d fields, got %d", itemFixedFields, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return lineError(ItemFile, n, "bad movie id %q", fields[0])
		}
		m := Movie{ID: id, Title: fields[1], IMDbURL: fields[4]}
		if fields[2] != "" {
			if m.ReleaseDate, err = time.Parse("02-Jan-2006", fields[2]); err != nil {
				return lineError(ItemFile, n, "bad release date %q", fields[2])
			}
		}
		for _, f := range fields[itemFixedFields:] {
			m.Flags = append(m.Flags, f == "1")
		}
		movies = append(movies, m)
		return nil
	})
	return movies, err
}

// ReadRatings parses u.data.
func ReadRatings(r io.Reader) ([]Rating, error) {
	var ratings []Rating
	err := scanLines(r, func(n int, line string) error {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return lineError(RatingFile, n, "expected 4 fields, got %d", len(fields))
		}
		var v [4]int64
		for i, f := range fields {
			x, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return lineError(RatingFile, n, "bad number %q", f)
			}
			v[i] = x
		}
		ratings = append(ratings, Rating{
			UserID:  int(v[0]),
			MovieID: int(v[1]),
			Rating:  int(v[2]),
			RatedAt: time.Unix(v[3], 0).UTC(),
		})
		return nil
	})
	return ratings, err
}

// Dataset is the content of a MovieLens 100k directory.
type Dataset struct {
	Genres  []Genre
	Movies  []Movie
	Ratings []Rating
}

// Load reads u.genre, u.item and u.data from dir.
func Load(dir string) (*Dataset, error) {
	var ds Dataset
	var err error
	if ds.Genres, err = ReadFile(filepath.Join(dir, GenreFile), ReadGenres); err != nil {
		return nil, err
	}
	if ds.Movies, err = ReadFile(filepath.Join(dir, ItemFile), ReadMovies); err != nil {
		return nil, err
	}
	if ds.Ratings, err = ReadFile(filepath.Join(dir, RatingFile), ReadRatings); err != nil {
		return nil, err
	}
	return &ds, nil
}

// GenreNames returns the genre names flagged for m.
func (m Movie) GenreNames(genres []Genre) []string {
	var names []string
	for i, on := range m.Flags {
		if on && i < len(genres) {
			names = append(names, genres[i].Name)
		}
	}
	return names
}

// ReadFile opens path and parses it with parse. A missing file is a
// FILE_NOT_FOUND error.
func ReadFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mgerrors.Wrap(mgerrors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

func scanLines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func lineError(file string, n int, format string, args ...any) error {
	return mgerrors.New(mgerrors.ErrCodeMalformedInput, "%s line %d: %s", file, n, fmt.Sprintf(format, args...))
}
