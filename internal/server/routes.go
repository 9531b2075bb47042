package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"sketchparty/internal/analytics"
	"sketchparty/internal/auth"
	"sketchparty/internal/config"
	"sketchparty/internal/db"
	"sketchparty/internal/game"
	"sketchparty/internal/metrics"
	"sketchparty/internal/rooms"
	"sketchparty/internal/words"
)

const tokenMaxAge = 30 * 24 * time.Hour

func Run() error {
	appCfg := config.Load()

	gameCfg := game.Config{
		TurnDuration: time.Duration(appCfg.TurnDuration) * time.Second,
		PrerollDelay: time.Duration(appCfg.PrerollDelay) * time.Second,
		TurnGrace:    time.Duration(appCfg.TurnGrace) * time.Second,
		RoundCount:   appCfg.RoundCount,
	}

	srv := &Server{
		Auth: auth.NewManager(appCfg.JWTSecret, tokenMaxAge),
	}

	// Optional database connection; without one the server runs fully
	// in-memory with the seed word list and no analytics.
	var gameStore game.GameStore
	var picker game.WordPicker
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			if err := database.SeedWords(words.SeedWords); err != nil {
				log.Printf("[DB] Seeding words failed: %v\n", err)
			}
			srv.DB = database
			srv.Analytics = analytics.NewQueries(database)
			srv.GuessBuffer = make(chan db.GuessRecord, 1000)
			go guessBatchWriter(database, srv.GuessBuffer)
			gameStore = database
			picker = database
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}
	if gameStore == nil {
		gameStore = game.NewMemoryStore()
		picker = words.NewSeedPicker()
	}
	srv.GameStore = gameStore

	roomStore := rooms.NewStore(gameCfg, gameStore, picker)
	if srv.GuessBuffer != nil {
		buffer := srv.GuessBuffer
		roomStore.OnGuess = func(ev game.GuessEvent) {
			select {
			case buffer <- db.GuessRecord{
				GameCode:    ev.GameID,
				PlayerName:  ev.Player,
				Word:        ev.Word,
				Points:      ev.Points,
				RemainingMs: int(ev.Remaining.Milliseconds()),
				GuessedAt:   ev.GuessedAt,
			}:
			default:
				// Analytics are best effort; never block a room on them.
			}
		}
	}
	srv.Rooms = roomStore

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/api/login", srv.handleLogin)
	mux.HandleFunc("/api/game", srv.handleCreateGame)
	mux.HandleFunc("/api/game/", srv.handleGameSummary)
	mux.HandleFunc("/api/leaderboard", srv.handleLeaderboard)
	mux.HandleFunc("/api/user/stats", srv.handleUserStats)
	mux.HandleFunc("/ws", srv.handleWS)

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, mux)
}

// guessBatchWriter drains the guess buffer into the database in batches so a
// burst of correct guesses costs one transaction, not one insert each.
func guessBatchWriter(database *db.DB, buffer chan db.GuessRecord) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := make([]db.GuessRecord, 0, 50)

	for {
		select {
		case g := <-buffer:
			batch = append(batch, g)
			if len(batch) >= 50 {
				if err := database.BatchRecordGuesses(batch); err != nil {
					log.Printf("[DB] BatchRecordGuesses error: %v\n", err)
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := database.BatchRecordGuesses(batch); err != nil {
					log.Printf("[DB] BatchRecordGuesses error: %v\n", err)
				}
				batch = batch[:0]
			}
		}
	}
}
