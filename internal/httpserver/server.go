// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Battleship backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access log, per-IP rate limit on game creation and shots).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: see auth.go.
//   - Database persistence for game history and user stats.
//
// Notes:
//   - This layer only sequences parse → resolve → report. All rules live in
//     the game and grid packages.
//   - Live sessions sit in the store; SQLite keeps the history.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/config"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

// Server bundles router, in-memory game store, and DB handle.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	db      *sql.DB
	limiter *ipLimiter
	daily   *dailyServer
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   st,
		db:      db,
		limiter: newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		now:     time.Now,
	}
	s.limiter.now = func() time.Time { return s.now() }

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "battleship-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "GET /game/{id}", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Game + daily endpoints: optional auth, guests can play.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.With(s.limiter.middleware).Post("/game/new", s.handleNewGame)
		r.With(s.limiter.middleware).Post("/game/guess", s.handleGuess)
		r.Get("/game/{id}", s.handleGetGame)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr. Stale sessions and idle rate-limit
// buckets are swept every cfg.SweepInterval while it runs.
func (s *Server) Start(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.janitor(ctx, s.cfg.SweepInterval)
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new. Zero dimensions fall back to
// the server defaults.
type newGameReq struct {
	BoardSize  int `json:"boardSize"`
	NumShips   int `json:"numShips"`
	ShipLength int `json:"shipLength"`
}
type newGameRes struct {
	GameID string `json:"gameId"`
	game.Config
}

// handleNewGame places a fleet, keeps the session in memory and records an
// owner row (user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	cfg := s.cfg.Game()
	if req.BoardSize != 0 {
		cfg.BoardSize = req.BoardSize
	}
	if req.NumShips != 0 {
		cfg.NumShips = req.NumShips
	}
	if req.ShipLength != 0 {
		cfg.ShipLength = req.ShipLength
	}

	g, err := game.New(cfg, nil)
	switch {
	case errors.Is(err, game.ErrInvalidConfig):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_config", "detail": err.Error()})
		return
	case errors.Is(err, game.ErrPlacement):
		log.Warn().Err(err).Msg("fleet placement")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "placement_failed", "detail": err.Error()})
		return
	case err != nil:
		log.Error().Err(err).Msg("new game")
		writeError(w, http.StatusInternalServerError, "new_game_failed")
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	s.recordNewGame(w, r, g)
	log.Info().Str("gameId", g.ID).Interface("config", g.Config).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Config: g.Config})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	game.Outcome
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	State   string `json:"state"` // "playing" | "won"
	Message string `json:"message"`
}

// handleGuess parses the guess, resolves it against the session and
// persists the counters. Bad coordinates come back as 400 with the parse
// error's code; nothing is counted in that case. Daily games are only
// playable through /daily/guess and look unknown here.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var (
		out   game.Outcome
		state string
	)
	err := s.store.Update(r.Context(), req.GameID, func(g *game.Game) error {
		if g.Mode != game.ModeClassic {
			return store.ErrNotFound
		}
		var err error
		out, err = g.ApplyGuess(strings.TrimSpace(req.Guess))
		state = g.State()
		return err
	})
	if err != nil {
		writeGuessError(w, err)
		return
	}

	s.recordGuess(r, req.GameID, out)
	writeJSON(w, http.StatusOK, guessRes{
		Outcome: out,
		Row:     out.Position.Row,
		Col:     out.Position.Col,
		State:   state,
		Message: message(out),
	})
}

// writeGuessError maps engine and store errors onto status codes.
func writeGuessError(w http.ResponseWriter, err error) {
	var pe *grid.ParseError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": pe.Code(), "message": pe.Error()})
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, "game_finished")
	default:
		log.Error().Err(err).Msg("apply guess")
		writeError(w, http.StatusInternalServerError, "guess_failed")
	}
}

type gameRes struct {
	GameID string      `json:"gameId"`
	Config game.Config `json:"config"`
	Board  game.Board  `json:"board"`
}

// handleGetGame returns the board snapshot for a live session.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var res gameRes
	err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		res = gameRes{GameID: g.ID, Config: g.Config, Board: g.View()}
		return nil
	})
	if err != nil {
		writeGuessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// message is the line a player sees after a shot.
func message(out game.Outcome) string {
	switch out.Result {
	case game.ResultWin:
		return fmt.Sprintf("The opposing battleships have sunk in %d guesses.", out.Guesses)
	case game.ResultSunk:
		return fmt.Sprintf("Opposing ship is down! %d ship(s) remain.", out.ShipsRemaining)
	case game.ResultHit:
		if out.Repeat {
			return "Hit! (already targeted)"
		}
		return "Hit!"
	default:
		if out.Repeat {
			return "No ship was struck. (already targeted)"
		}
		return "No ship was struck."
	}
}

// --------------------------- persistence -----------------------------------

// recordNewGame inserts the history row and bumps games_played for users.
// Failures are logged, never surfaced: play continues from memory.
func (s *Server) recordNewGame(w http.ResponseWriter, r *http.Request, g *game.Game) {
	started := g.StartedAt.Format(time.RFC3339)
	if me := currentUser(r); me != nil {
		if _, err := s.db.ExecContext(r.Context(),
			`INSERT INTO games (id, user_id, board_size, num_ships, ship_length, started_at, status)
			 VALUES (?,?,?,?,?,?,?)`,
			g.ID, me.ID, g.Config.BoardSize, g.Config.NumShips, g.Config.ShipLength, started, g.State()); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("insert user game row")
		}
		if _, err := s.db.ExecContext(r.Context(),
			`UPDATE users SET games_played = games_played + 1 WHERE id=?`, me.ID); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump games played")
		}
		return
	}
	anon := s.ensureAnonID(w, r)
	if _, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, anonymous_id, board_size, num_ships, ship_length, started_at, status)
		 VALUES (?,?,?,?,?,?,?)`,
		g.ID, anon, g.Config.BoardSize, g.Config.NumShips, g.Config.ShipLength, started, g.State()); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert anon game row")
	}
}

// recordGuess stores the running guess count and, on a win, closes the game
// row and updates the owner's stats in one transaction.
func (s *Server) recordGuess(r *http.Request, gameID string, out game.Outcome) {
	ctx := r.Context()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin guess tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET guesses=? WHERE id=?`, out.Guesses, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("update guesses")
	}

	if out.Result == game.ResultWin {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET status='won', finished_at=? WHERE id=?`,
			s.now().UTC().Format(time.RFC3339), gameID); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("finish game")
		}
		if me := currentUser(r); me != nil {
			if err := bumpWin(ctx, tx, me.ID, out.Guesses); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("commit guess tx")
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
