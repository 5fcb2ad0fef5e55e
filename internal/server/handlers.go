package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/git-ranked/gitranked/pkg/buildinfo"
	apperrors "github.com/git-ranked/gitranked/pkg/errors"
	"github.com/git-ranked/gitranked/pkg/github"
	"github.com/git-ranked/gitranked/pkg/leaderboard"
	"github.com/git-ranked/gitranked/pkg/location"
)

// searchRequest is the POST /api/search body. The token travels in the
// body (matching the web client) but an Authorization header works too.
type searchRequest struct {
	Location string `json:"location"`
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
	Cursor   string `json:"cursor"`
	Token    string `json:"token"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	token := req.Token
	if token == "" {
		token = bearerToken(r)
	}

	page, err := s.board.Search(r.Context(), leaderboard.Request{
		Location: req.Location,
		Sort:     github.Sort(req.Sort),
		Page:     req.Page,
		Cursor:   req.Cursor,
		Token:    token,
		ClientID: clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Anonymous responses always expose the local quota state.
	if page.Remaining >= 0 {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(page.Remaining))
		if !page.LimiterReset.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(page.LimiterReset.Unix(), 10))
		}
	}

	status := http.StatusOK
	if page.RateLimited {
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, page)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")

	user, err := s.board.User(r.Context(), login, bearerToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.locations.Suggest(r.Context(), r.URL.Query().Get("q"), 10)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []location.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string][]location.Suggestion{"suggestions": suggestions})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
	}

	var body errorBody
	body.Error.Code = string(code)
	if body.Error.Code == "" {
		body.Error.Code = string(apperrors.ErrCodeInternal)
	}
	body.Error.Message = apperrors.UserMessage(err)
	writeJSON(w, status, body)
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidLocation, apperrors.ErrCodeInvalidSort, apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeUserNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeUpstream, apperrors.ErrCodeConnection, apperrors.ErrCodeHydrationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
