// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily game.
// Exposes under /daily:
//   - POST /daily/new         → start today's game (creates or reuses the session)
//   - GET  /daily/candidates  → autocomplete for the current session
//   - POST /daily/guess       → submit a guess
//   - GET  /daily/guesses     → history, newest first
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// Sessions are held in memory for active play and the result is persisted on win.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capsle/internal/auth"
	"github.com/robalobadob/capsle/internal/daily"
	"github.com/robalobadob/capsle/internal/game"
	"github.com/robalobadob/capsle/internal/roster"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/candidates", s.handleDailyCandidates)
		r.Post("/guess", s.handleDailyGuess)
		r.Get("/guesses", s.handleDailyGuesses)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// owner returns the authenticated user id, or the guest cookie id.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) string {
	if me := auth.UserFrom(r.Context()); me != nil {
		return me.ID
	}
	return s.deps.Auth.EnsureAnonID(w, r)
}

// session loads gameId and checks it belongs to the caller.
func (s *Server) session(w http.ResponseWriter, r *http.Request, gameID string) (*game.Session, bool) {
	owner := s.owner(w, r)
	sess, err := s.deps.Sessions.Get(r.Context(), gameID)
	if err != nil || sess.Owner != owner {
		writeError(w, http.StatusNotFound, "no_session", nil)
		return nil, false
	}
	return sess, true
}

// -----------------------------------------------------------------------------
// /daily/new

type newRes struct {
	GameID     string             `json:"gameId"`
	Date       string             `json:"date"`
	Played     bool               `json:"played"`
	Roster     string             `json:"rosterVersion"`
	Attributes []roster.Attribute `json:"attributes"`
}

// handleDailyNew creates or reuses today's session for the caller.
// played reports whether a result is already stored for today.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := s.owner(w, r)
	now := s.deps.Now()
	date := s.deps.Picker.DateKey(now)

	played := false
	if s.deps.Results != nil {
		p, err := s.deps.Results.AlreadyPlayed(ctx, owner, date)
		if err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("checking daily result")
		}
		played = p
	}

	if sess, ok := s.deps.Sessions.ForOwner(ctx, owner, date); ok {
		writeJSON(w, http.StatusOK, newRes{
			GameID: sess.ID, Date: date, Played: played,
			Roster: sess.RosterVersion(), Attributes: sess.Schema().Attributes,
		})
		return
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: date, Played: true, Attributes: []roster.Attribute{}})
		return
	}

	ros, err := s.deps.Catalog.Current()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "roster_unavailable", err)
		return
	}
	answer, _, err := s.deps.Picker.Pick(ros, now)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "roster_unavailable", err)
		return
	}
	sess, err := game.NewSession(auth.NewID(), owner, date, ros, answer, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session_failed", nil)
		return
	}
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed", nil)
		return
	}
	if n := s.deps.Sessions.PruneBefore(ctx, date); n > 0 {
		log.Debug().Int("sessions", n).Msg("pruned stale sessions")
	}

	writeJSON(w, http.StatusOK, newRes{
		GameID: sess.ID, Date: date, Played: false,
		Roster: ros.Version(), Attributes: ros.Schema().Attributes,
	})
}

// -----------------------------------------------------------------------------
// /daily/candidates

func (s *Server) handleDailyCandidates(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, r.URL.Query().Get("gameId"))
	if !ok {
		return
	}
	cands := sess.Candidates(r.URL.Query().Get("q"))
	out := make([]characterView, 0, len(cands))
	for _, c := range cands {
		out = append(out, characterView{ID: c.ID, Name: c.DisplayName(), Image: c.Image()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": out})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Query  string `json:"query"`
}

// handleDailyGuess applies a guess; on the winning guess it persists the
// result and bumps stats for logged-in players (both best effort).
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", nil)
		return
	}
	if strings.TrimSpace(p.GameID) == "" {
		writeError(w, http.StatusBadRequest, "missing_game_id", nil)
		return
	}
	sess, ok := s.session(w, r, p.GameID)
	if !ok {
		return
	}

	out, err := sess.Guess(p.Query, s.deps.Now())
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "character_not_found", nil)
		return
	case errors.Is(err, game.ErrAlreadyGuessed):
		writeError(w, http.StatusConflict, "already_guessed", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "guess_failed", nil)
		return
	}

	if out.Won {
		s.recordWin(r, sess)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) recordWin(r *http.Request, sess *game.Session) {
	ctx := r.Context()
	guesses, elapsed, ok := sess.Result()
	if !ok {
		return
	}
	me := auth.UserFrom(ctx)
	if s.deps.Results != nil {
		res := daily.Result{
			UserID:      sess.Owner,
			Date:        sess.Date,
			CharacterID: sess.Answer().ID,
			Guesses:     guesses,
			ElapsedMs:   int(elapsed.Milliseconds()),
		}
		if me != nil {
			res.Username = me.Username
		}
		if err := s.deps.Results.InsertResult(ctx, res); err != nil {
			log.Warn().Err(err).Str("owner", sess.Owner).Msg("insert daily result")
		}
	}
	if me != nil {
		if err := s.deps.Auth.RecordWin(ctx, me.ID, sess.Date); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
		}
	}
	log.Info().Str("gameId", sess.ID).Int("guesses", guesses).Dur("elapsed", elapsed).Msg("daily won")
}

// -----------------------------------------------------------------------------
// /daily/guesses

func (s *Server) handleDailyGuesses(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, r.URL.Query().Get("gameId"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"guesses": sess.Guesses(),
		"won":     sess.Won(),
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.deps.Picker.DateKey(s.deps.Now())
	}
	if s.deps.Results == nil {
		writeJSON(w, http.StatusOK, lbRes{Date: date, Top: []daily.LBRow{}})
		return
	}
	rows, err := s.deps.Results.Leaderboard(r.Context(), date, daily.DefaultLeaderboardLimit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
