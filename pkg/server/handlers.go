package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/buildinfo"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/pipeline"
	"github.com/matzehuels/moviegraph/pkg/ratings"
)

// CacheHeader reports whether the artifact came from the render cache.
const CacheHeader = "X-Cache"

// handleRender renders the interaction map in the request body.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, mgerrors.New(mgerrors.ErrCodePayloadTooLarge, "body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, mgerrors.Wrap(mgerrors.ErrCodeMalformedInput, err, "read body"))
		return
	}

	res, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	writeArtifact(w, res)
}

// handleUsersGraph renders the positive ratings of the requested users,
// labelling movies with their titles.
func (s *Server) handleUsersGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ids, err := mgerrors.ValidateUserIDs(r.URL.Query()["user"])
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := s.store.InteractionMap(r.Context(), ids)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	s.renderRatings(w, r, m, opts)
}

// handleEgoGraph renders the neighbourhood of one user, see
// [ratings.Store.EgoGraph]. ?distance= defaults to 1 and
// ?min_inverse_popularity= to 0, which keeps every movie.
func (s *Server) handleEgoGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := mgerrors.ValidateUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	distance := 1
	if v := q.Get("distance"); v != "" {
		if distance, err = strconv.Atoi(v); err != nil {
			writeError(w, mgerrors.New(mgerrors.ErrCodeInvalidInput, "distance must be an integer, got %q", v))
			return
		}
	}
	var minInv float64
	if v := q.Get("min_inverse_popularity"); v != "" {
		if minInv, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, mgerrors.New(mgerrors.ErrCodeInvalidInput, "min_inverse_popularity must be a number, got %q", v))
			return
		}
	}
	if err := ratings.ValidateEgo(id, distance, minInv); err != nil {
		writeError(w, err)
		return
	}

	m, err := s.store.EgoGraph(r.Context(), id, distance, minInv)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	s.renderRatings(w, r, m, opts)
}

// renderRatings labels the movies of m with their titles and renders it.
func (s *Server) renderRatings(w http.ResponseWriter, r *http.Request, m *bipartite.InteractionMap, opts pipeline.Options) {
	titles, err := s.store.Titles(r.Context(), ratings.MovieIDs(m))
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	opts.Labels = titles

	res, err := s.runner.ExecuteMap(r.Context(), m, opts)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	writeArtifact(w, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
		"ratings": s.store != nil,
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, mgerrors.New(mgerrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

// requestOptions applies ?format= and ?edges= over the configured defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	q := r.URL.Query()
	if f := q.Get("format"); f != "" {
		if err := pipeline.ValidateFormat(f); err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if e := q.Get("edges"); e != "" {
		v, err := strconv.ParseBool(e)
		if err != nil {
			return opts, mgerrors.New(mgerrors.ErrCodeInvalidInput, "edges must be a boolean, got %q", e)
		}
		opts.Edges = v
	}
	return opts, nil
}

func (s *Server) logFailure(r *http.Request, err error) {
	code := mgerrors.GetCode(err)
	if mgerrors.HTTPStatus(code) >= 500 {
		s.logger.Error("render failed", "path", r.URL.Path, "code", code, "error", err)
		return
	}
	s.logger.Debug("render rejected", "path", r.URL.Path, "code", code, "error", err)
}

func writeArtifact(w http.ResponseWriter, res *pipeline.Result) {
	h := w.Header()
	h.Set("Content-Type", res.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	if res.CacheHit {
		h.Set(CacheHeader, "hit")
	} else {
		h.Set(CacheHeader, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeError answers with the status of err's code. Errors without a code
// are reported as INTERNAL_ERROR without leaking their text.
func writeError(w http.ResponseWriter, err error) {
	code := mgerrors.GetCode(err)
	msg := mgerrors.UserMessage(err)
	if code == "" {
		code = mgerrors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, mgerrors.HTTPStatus(code), errorBody{Code: string(code), Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
