package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

// maxBodyBytes bounds POST /api/query bodies.
const maxBodyBytes = 1 << 20

// QueryRequest is the POST /api/query body.
type QueryRequest struct {
	Filters urlquery.Filters `json:"filters"`
	Sorts   []SortRequest    `json:"sorts"`
	Include []string         `json:"include"`
	Page    *int             `json:"page"`
	PerPage *int             `json:"perPage"`
}

// SortRequest orders and configures one sort. Active defaults to true.
type SortRequest struct {
	Column    string             `json:"column"`
	Direction urlquery.Direction `json:"direction"`
	Active    *bool              `json:"active"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	q, err := s.stateFromURL(r.Context(), r.URL.RawQuery)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer q.Close()

	writeJSON(w, http.StatusOK, q.Snapshot())
}

func (s *Server) handlePostQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.New("Q020").Wrap(err))
		return
	}

	q, err := s.stateFromRequest(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer q.Close()

	writeJSON(w, http.StatusOK, q.Snapshot())
}

// stateFromURL builds a QueryState normalized from a raw query string.
func (s *Server) stateFromURL(ctx context.Context, rawQuery string) (*urlquery.QueryState, error) {
	params, err := urlquery.ParseRawQuery(rawQuery)
	if err != nil {
		return nil, errors.MalformedQuery(rawQuery, err)
	}
	return s.newState(ctx, params), nil
}

func (s *Server) newState(ctx context.Context, params urlquery.SearchParams, extra ...urlquery.Option) *urlquery.QueryState {
	opts := make([]urlquery.Option, 0, len(s.queryOpts)+len(extra)+2)
	opts = append(opts, s.queryOpts...)
	opts = append(opts,
		urlquery.WithSearchParams(params),
		urlquery.WithOnNormalize(s.observeNormalize(ctx)),
	)
	opts = append(opts, extra...)
	return urlquery.New(opts...)
}

// stateFromRequest builds a QueryState from a POST body. Listed sorts move
// to the front in body order through the sort parameter, then take their
// active flag from the body. Unknown columns are ignored.
func (s *Server) stateFromRequest(ctx context.Context, req QueryRequest) (*urlquery.QueryState, error) {
	if req.Page != nil && *req.Page < 0 || req.PerPage != nil && *req.PerPage < 0 {
		return nil, errors.New("Q011")
	}

	tokens := make([]string, 0, len(req.Sorts))
	for _, sr := range req.Sorts {
		if sr.Column == "" {
			continue
		}
		tokens = append(tokens, urlquery.Sort{Column: sr.Column, Direction: sr.Direction}.Token())
	}
	var params urlquery.Params
	if len(tokens) > 0 {
		params = params.Add(urlquery.ParamSort, strings.Join(tokens, ","))
	}

	q := s.newState(ctx, params, urlquery.WithNormalizeFromURL(true))
	q.Batch(func() {
		for _, e := range req.Filters.Entries() {
			q.SetFilter(e.Column, e.Value)
		}
		for _, sr := range req.Sorts {
			if sr.Active != nil && !*sr.Active {
				_ = q.SetSortActive(sr.Column, false)
			}
		}
		if len(req.Include) > 0 {
			q.AddInclude(req.Include...)
		}
		if req.Page != nil {
			q.SetPage(*req.Page)
		}
		if req.PerPage != nil {
			q.SetPerPage(*req.PerPage)
		}
	})
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	qe := errors.FromError(err, "Q020")
	s.logger.Warn("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"code", qe.Code,
		"error", err)
	writeJSON(w, qe.HTTPStatus(), qe)
}
