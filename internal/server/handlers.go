package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sketchparty/internal/analytics"
	"sketchparty/internal/auth"
	"sketchparty/internal/db"
	"sketchparty/internal/game"
	"sketchparty/internal/rooms"
)

const maxNameLength = 20

type Server struct {
	Rooms     *rooms.Store
	Auth      *auth.Manager
	GameStore game.GameStore

	DB          *db.DB              // nil if no database configured
	Analytics   *analytics.Queries  // nil if no database configured
	GuessBuffer chan db.GuessRecord // nil if no database configured
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handle] Encoding response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleLogin issues the session token that names a player. There is no
// password; the name itself is the account, claimed on first login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxNameLength {
		writeError(w, http.StatusBadRequest, "name must be 1-20 characters")
		return
	}

	if s.DB != nil {
		if err := s.DB.EnsureUser(name); err != nil {
			log.Printf("[Handle:Login] %v\n", err)
			writeError(w, http.StatusInternalServerError, "could not register user")
			return
		}
	}

	token, err := s.Auth.Generate(name, time.Now())
	if err != nil {
		log.Printf("[Handle:Login] %v\n", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "token": token})
}

// handleCreateGame mints a fresh game code and registers it so players can
// start connecting to it.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if _, err := s.Auth.FromRequest(r); err != nil {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	code, err := rooms.GenerateCode()
	if err != nil {
		log.Printf("[Handle:CreateGame] %v\n", err)
		writeError(w, http.StatusInternalServerError, "could not create game")
		return
	}
	if err := s.GameStore.CreateGame(code); err != nil {
		log.Printf("[Handle:CreateGame] %v\n", err)
		writeError(w, http.StatusInternalServerError, "could not create game")
		return
	}

	log.Printf("[Handle:CreateGame] Created game %s\n", code)
	writeJSON(w, http.StatusCreated, map[string]string{"code": code})
}

// handleGameSummary serves the persisted recap for /api/game/{code}.
func (s *Server) handleGameSummary(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics require a database")
		return
	}
	code := strings.TrimPrefix(r.URL.Path, "/api/game/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusNotFound, "unknown game")
		return
	}

	summary, err := s.Analytics.GetGameSummary(code)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown game")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics require a database")
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = "points"
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := s.Analytics.GetLeaderboard(category, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown leaderboard category")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics require a database")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		identity, err := s.Auth.FromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		name = identity
	}

	stats, err := s.Analytics.GetUserStats(name)
	if errors.Is(err, db.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "unknown user")
		return
	}
	if err != nil {
		log.Printf("[Handle:UserStats] %v\n", err)
		writeError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
