package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PublicAI01/publicai-staking/internal/api"
	"github.com/PublicAI01/publicai-staking/internal/clients/tokenclient"
	"github.com/PublicAI01/publicai-staking/internal/config"
	"github.com/PublicAI01/publicai-staking/internal/db"
	dbmodel "github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/observability/metrics"
	"github.com/PublicAI01/publicai-staking/internal/observability/tracing"
	"github.com/PublicAI01/publicai-staking/internal/queue"
	"github.com/PublicAI01/publicai-staking/internal/services"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	var tokenClient tokenclient.TokenInterface
	tokenClient = tokenclient.NewTokenClient(&cfg.Token)
	tokenClient = tokenclient.NewTokenClientWithMetrics(tokenClient)

	service := services.NewService(cfg, dbClient, tokenClient)
	if err := service.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while initializing global params")
	}

	settlementConsumer, err := queue.NewConsumer(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize settlement consumer")
	}
	if err := settlementConsumer.Start(ctx, func(ctx context.Context, ev *types.SettlementEvent) error {
		ctx = tracing.InjectTraceID(ctx)
		if terr := service.FinalizeWithdrawal(ctx, ev); terr != nil {
			return terr
		}
		return nil
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to start settlement consumer")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	apiServer := api.New(&cfg.Server, service)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error().Err(err).Msg("API server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error while shutting down API server")
	}
	settlementConsumer.Shutdown()

	return nil
}
