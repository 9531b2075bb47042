package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sketchparty_rooms_active",
		Help: "Number of rooms currently held in the registry.",
	})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sketchparty_client_events_total",
		Help: "Inbound client events by type, counted after rate limiting.",
	}, []string{"type"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchparty_client_events_dropped_total",
		Help: "Inbound client events dropped by the per-connection rate limiter.",
	})

	CorrectGuesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchparty_correct_guesses_total",
		Help: "Correct guesses across all rooms.",
	})

	GamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchparty_games_completed_total",
		Help: "Games that reached their terminal state.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
