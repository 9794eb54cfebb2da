// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/guess       → fire at today's daily fleet
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each player gets one result per day (enforced by DB + in-memory session).
// The fleet is derived from date + salt, so everyone hunts the same ships.
// Daily games are marked game.ModeDaily and cannot be played via /game/guess.
// A won session is dropped from memory once its result is stored.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession links a player's day to a live game in the store.
type dailySession struct {
	GameID string
	Date   string
	Start  time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.With(s.limiter.middleware).Post("/new", dd.handleNew)
		r.With(s.limiter.middleware).Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// playerID returns the authenticated user ID if logged in,
// otherwise the anonymous cookie ID.
func (d *dailyServer) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := currentUser(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string      `json:"gameId"`
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	Config game.Config `json:"config"`
}

// handleNew creates or reuses a daily session for the current date.
// A player who already has a result for today gets Played=true and no game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.playerID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)
	cfg := d.srv.cfg.Game()

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true, Config: cfg})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[key]; ok {
		if _, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.GameID, Date: date, Config: cfg})
			return
		}
		// The game was swept; start over on the same board.
		delete(d.sessions, key)
	}

	fleet, err := daily.Fleet(now, d.salt, cfg)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily fleet")
		writeError(w, http.StatusInternalServerError, "placement_failed")
		return
	}
	g := game.NewWithFleet(cfg, fleet)
	g.Mode = game.ModeDaily
	g.StartedAt = now.UTC()
	if err := d.srv.store.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[key] = &dailySession{GameID: g.ID, Date: date, Start: now}
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: g.ID, Date: date, Config: cfg})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessRes struct {
	game.Outcome
	State   string `json:"state"` // playing | won | locked
	Message string `json:"message,omitempty"`
}

// handleGuess fires at today's fleet. Players with a stored result answer
// "locked"; the winning shot records the result for the leaderboard.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := d.playerID(w, r)

	var p guessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	date := daily.DateKey(d.srv.now())

	key := uid + "|" + date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.GameID != p.GameID {
		if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
			writeJSON(w, http.StatusOK, dailyGuessRes{State: "locked"})
			return
		}
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	var (
		out   game.Outcome
		state string
	)
	err := d.srv.store.Update(r.Context(), sess.GameID, func(g *game.Game) error {
		var err error
		out, err = g.ApplyGuess(strings.TrimSpace(p.Guess))
		state = g.State()
		if errors.Is(err, game.ErrFinished) {
			out.Guesses = g.Guesses
		}
		return err
	})
	if errors.Is(err, game.ErrFinished) {
		writeJSON(w, http.StatusOK, dailyGuessRes{Outcome: out, State: "locked"})
		return
	}
	if err != nil {
		writeGuessError(w, err)
		return
	}

	if out.Result == game.ResultWin {
		elapsed := int(d.srv.now().Sub(sess.Start).Milliseconds())
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: date, Guesses: out.Guesses, ElapsedMs: elapsed,
		}); err != nil {
			// Keep the session so the finished board stays locked.
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		} else {
			d.drop(r.Context(), key)
		}
	}
	writeJSON(w, http.StatusOK, dailyGuessRes{Outcome: out, State: state, Message: message(out)})
}

// drop forgets a session and its game.
func (d *dailyServer) drop(ctx context.Context, key string) {
	d.mu.Lock()
	sess, ok := d.sessions[key]
	delete(d.sessions, key)
	d.mu.Unlock()
	if ok {
		_ = d.srv.store.Delete(ctx, sess.GameID)
	}
}

// prune drops sessions from any day other than today, with their games.
func (d *dailyServer) prune(ctx context.Context, today string) int {
	d.mu.Lock()
	var stale []string
	for key, sess := range d.sessions {
		if sess.Date != today {
			stale = append(stale, key)
		}
	}
	d.mu.Unlock()
	for _, key := range stale {
		d.drop(ctx, key)
	}
	return len(stale)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
