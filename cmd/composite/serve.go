package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Composite/internal/adapters/http"
	"github.com/dkeye/Composite/internal/adapters/livekit"
	"github.com/dkeye/Composite/internal/adapters/rtc"
	"github.com/dkeye/Composite/internal/adapters/sdk"
	wsignal "github.com/dkeye/Composite/internal/adapters/signal"
	"github.com/dkeye/Composite/internal/app"
	"github.com/dkeye/Composite/internal/app/calling"
	"github.com/dkeye/Composite/internal/app/orch"
	"github.com/dkeye/Composite/internal/app/viewmodel"
	"github.com/dkeye/Composite/internal/config"
	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve composites over HTTP and websocket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.Level())

	if cfg.Secret == "" {
		cfg.Secret = randomSecret()
		log.Warn().Msg("no session secret configured, sessions will not survive a restart")
	}

	policy, err := app.ParsePolicy(cfg.Backpressure)
	if err != nil {
		return err
	}
	hub := livekit.NewHub(livekit.Config{
		APIKey:    cfg.LiveKit.APIKey,
		APISecret: cfg.LiveKit.APISecret,
		Room:      cfg.Room,
	})
	o := orch.NewOrchestrator(policy, compositeOptions(cfg, hub))
	defer o.Close()

	limiter := wsignal.NewIntentRateLimiter(cfg.IntentLimit, cfg.IntentWindow)
	ws := wsignal.NewStateWSController(o, limiter)
	ws.SendBuffer = cfg.SnapshotBuffer
	ws.PingPeriod = cfg.PingPeriod
	ws.ReadLimit = cfg.ReadLimit

	r := router.SetupRouter(ctx, cfg, router.Deps{Orch: o, WS: ws, Limiter: limiter, LiveKit: hub})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(cfg, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Composite server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited gracefully")
		return nil
	})
	return g.Wait()
}

// compositeOptions builds the per-session options. Every session gets its
// own host event feed; the calling engine is wired only when a signalling
// server is configured.
func compositeOptions(cfg *config.Config, hub *livekit.Hub) func(app.SessionID) orch.Options {
	return func(sid app.SessionID) orch.Options {
		key := string(sid)
		opts := orch.Options{
			Initial: core.InitialOptions{
				DisplayName:           cfg.DisplayName,
				StartWithCameraOn:     cfg.StartWithCameraOn,
				StartWithMicrophoneOn: cfg.StartWithMicrophoneOn,
				SkipSetup:             cfg.SkipSetup,
			},
			Layout:         viewmodel.GridLayout(cfg.GridLayout),
			UIThrottle:     cfg.UIThrottle,
			RosterThrottle: cfg.ParticipantThrottle,
			Events:         wsignal.NewEventFeed(),
			AudioRouter:    rtc.NewAudioRoute(domain.AudioDeviceSpeaker),
			OnClose:        func() { hub.Detach(key) },
		}
		opts.OnEngine = func(events *sdk.EventsHandler) { hub.Attach(key, events) }
		if cfg.SignalURL != "" {
			opts.NewService = func(_ uuid.UUID, events *sdk.EventsHandler) (calling.Service, error) {
				svc, err := rtc.NewService(rtc.Config{
					SignalURL:   cfg.SignalURL,
					Room:        cfg.Room,
					DisplayName: cfg.DisplayName,
					ICEServers:  cfg.ICEServers,
				}, events)
				if err != nil {
					return nil, err
				}
				return svc, nil
			}
		}
		return opts
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
