// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/internal/index"
	"github.com/pdiddy/paper-recommender/internal/recommend"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	maxTopN         = 100
)

type paperResponse struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	Authors   []string `json:"authors"`
	Published string   `json:"published"`
	URL       string   `json:"url,omitempty"`
}

type listPapersResponse struct {
	Papers     []paperResponse `json:"papers"`
	TotalCount int             `json:"total_count"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
}

type recommendationsResponse struct {
	Generation      string             `json:"generation"`
	Query           paperResponse      `json:"query"`
	TopN            int                `json:"top_n"`
	Recommendations []recommend.Result `json:"recommendations"`
}

func toPaperResponse(i int, p types.Paper, withSummary bool) paperResponse {
	resp := paperResponse{
		Index:     i,
		ID:        p.ID,
		Title:     p.Title,
		Authors:   p.Authors,
		Published: p.PublishedAt.Format("2006-01-02"),
		URL:       p.AbstractURL(),
	}
	if resp.Authors == nil {
		resp.Authors = []string{}
	}
	if withSummary {
		resp.Summary = p.Summary
	}
	return resp
}

// listPapers returns the corpus in order, optionally filtered by a
// case-insensitive title substring.
func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rec.Current()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit, offset, ok := parsePagination(w, r)
	if !ok {
		return
	}
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	c := snap.Corpus()
	matches := make([]paperResponse, 0)
	total := 0
	for i := 0; i < c.Len(); i++ {
		p := c.At(i)
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		if total >= offset && len(matches) < limit {
			matches = append(matches, toPaperResponse(i, p, false))
		}
		total++
	}

	writeJSON(w, http.StatusOK, listPapersResponse{
		Papers:     matches,
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	})
}

func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	snap, i, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPaperResponse(i, snap.Corpus().At(i), true))
}

func (s *Server) getRecommendations(w http.ResponseWriter, r *http.Request) {
	snap, i, ok := s.lookup(w, r)
	if !ok {
		return
	}

	topN := 0
	if v := r.URL.Query().Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTopN {
			writeError(w, http.StatusBadRequest, "top_n must be an integer between 1 and "+strconv.Itoa(maxTopN))
			return
		}
		topN = n
	}

	if topN == 0 {
		topN = s.rec.Ranking().DefaultTopN
	}
	recs, err := s.rec.RecommendIn(snap, i, topN)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{
		Generation:      snap.Generation,
		Query:           toPaperResponse(i, snap.Corpus().At(i), false),
		TopN:            topN,
		Recommendations: recommend.Results(recs),
	})
}

func (s *Server) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.rec.Current()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Info())
}

func (s *Server) reloadSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rec.Reload(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("snapshot reload failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Info())
}

// lookup resolves the {paperID} path parameter against the current
// snapshot, writing an error response when it cannot.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*recommend.Snapshot, int, bool) {
	snap, err := s.rec.Current()
	if err != nil {
		writeDomainError(w, err)
		return nil, 0, false
	}
	id := chi.URLParam(r, "paperID")
	i, ok := snap.Corpus().IndexOf(id)
	if !ok {
		writeError(w, http.StatusNotFound, "paper not found")
		return nil, 0, false
	}
	return snap, i, true
}

// writeDomainError maps sentinel errors to status codes. Internal details
// are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, "paper not found")
	case errors.Is(err, recommend.ErrInvalidTopN):
		writeError(w, http.StatusBadRequest, "top_n must be at least 1")
	case errors.Is(err, recommend.ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "no snapshot loaded")
	case errors.Is(err, corpus.ErrDataUnavailable):
		writeError(w, http.StatusServiceUnavailable, "paper data unavailable")
	case errors.Is(err, index.ErrModelingFailure):
		writeError(w, http.StatusServiceUnavailable, "similarity index could not be built")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePagination reads limit and offset, writing a 400 on bad input.
func parsePagination(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = defaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxPageSize)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
