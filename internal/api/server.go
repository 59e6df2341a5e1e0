package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/config"
	"github.com/PublicAI01/publicai-staking/internal/services"
)

// Server exposes the staking ledger over HTTP: the deposit notification
// endpoint, the unstake entrypoint, the owner-gated admin surface and the
// read-only queries. Settlement events do not come through here.
type Server struct {
	httpServer *http.Server
	svc        *services.Service
}

func New(cfg *config.ServerConfig, svc *services.Service) *Server {
	srv := &Server{svc: svc}

	srv.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      srv.routes(),
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return srv
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(traceMiddleware)

	r.Get("/healthcheck", s.handleHealthcheck)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/token/on-transfer", s.handleOnTransfer)
		r.Post("/unstake", s.handleUnstake)

		r.Get("/stake-info", s.handleGetStakeInfo)
		r.Get("/user-staked", s.handleUserStaked)
		r.Get("/stake-infos", s.handleSearchStakeInfos)
		r.Get("/stats", s.handleGetStats)
		r.Get("/params", s.handleGetParams)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/pause", s.handleSetStakePaused)
			r.Post("/lock-duration", s.handleSetLockDuration)
			r.Post("/stake-amount", s.handleSetRequiredStakeAmount)
			r.Post("/owner", s.handleUpdateOwner)
		})
	})

	return r
}

func (s *Server) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting staking API server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down staking API server")
	return s.httpServer.Shutdown(ctx)
}
