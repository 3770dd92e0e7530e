package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	twitchirc "github.com/gempir/go-twitch-irc/v4"

	"github.com/streamoverlay/relay/internal/config"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/internal/handler"
	"github.com/streamoverlay/relay/internal/hub"
	"github.com/streamoverlay/relay/internal/relay"
	"github.com/streamoverlay/relay/internal/upstream/kick"
	"github.com/streamoverlay/relay/internal/upstream/twitch"
	"github.com/streamoverlay/relay/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log)
	logger := log.L()
	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting chat relay")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Room registry + broadcast
	wsHub := hub.NewHub(cfg.WebSocket)

	// Upstream: Twitch rides one shared IRC session. Without credentials
	// the connection is anonymous, which is enough for a read-only relay.
	var ircClient *twitchirc.Client
	if cfg.Twitch.Username != "" && cfg.Twitch.OAuthToken != "" {
		ircClient = twitchirc.NewClient(cfg.Twitch.Username, cfg.Twitch.OAuthToken)
	} else {
		ircClient = twitchirc.NewAnonymousClient()
	}
	twitchAdapter := twitch.NewAdapter(ircClient, wsHub)
	go twitchAdapter.Run(ctx)

	// Upstream: Kick gets one supervised socket per channel.
	kickManager := kick.NewManager(cfg.Kick, kick.NewAPIResolver(cfg.Kick.APIBase), wsHub)
	defer kickManager.Close()

	rly := relay.New(wsHub, map[string]relay.Subscriber{
		domain.PlatformTwitch: twitchAdapter,
		domain.PlatformKick:   kickManager,
	})

	// Downstream liveness
	supervisor := hub.NewSupervisor(wsHub, cfg.WebSocket.PingInterval)
	go supervisor.Run(ctx)

	wsHandler := handler.NewWSHandler(wsHub, rly, cfg.WebSocket)

	mux := http.NewServeMux()
	wsHandler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      log.HTTPMiddleware(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("relay listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down chat relay")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("chat relay stopped")
}
