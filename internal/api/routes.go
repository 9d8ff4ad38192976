package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/me", s.handleMe)

			r.Get("/challenges", s.handleListChallenges)
			r.Get("/challenges/{id}", s.handleGetChallenge)
			r.Get("/challenges/{id}/bloods", s.handleChallengeBloods)
			r.Get("/challenges/{id}/stats", s.handleChallengeStats)
			r.Post("/challenges/{id}/submit", s.handleSubmit)

			r.Get("/contests", s.handleListContests)
			r.Get("/contests/{id}", s.handleGetContest)
			r.Post("/contests/{id}/join", s.handleJoinContest)
			r.Post("/contests/{id}/authorize", s.handleAuthorizeContest)
			r.Get("/contests/{id}/scoreboard", s.handleScoreboard)
			r.Get("/contests/{id}/solves/recent", s.handleRecentSolves)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Post("/challenges", s.handleCreateChallenge)
				r.Patch("/challenges/{id}/points", s.handleUpdatePoints)
				r.Post("/contests", s.handleCreateContest)
				r.Get("/contests/{id}/export", s.handleExportScoreboard)
			})
		})
	})

	return r
}
