package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VCnoC/ai-werewolf/internal/config"
	"github.com/VCnoC/ai-werewolf/internal/engineapi"
	"github.com/VCnoC/ai-werewolf/internal/httpapi"
	"github.com/VCnoC/ai-werewolf/internal/reducer"
	"github.com/VCnoC/ai-werewolf/internal/session"
	"github.com/VCnoC/ai-werewolf/internal/transport"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed from the engine's state endpoint; a failure here just means
	// starting from defaults, it never blocks the live stream.
	seed := reducer.NewSnapshot()
	bootstrapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if gs, err := engineapi.NewClient(cfg.EngineURL, cfg.AuthToken).FetchState(bootstrapCtx, cfg.GameID); err != nil {
		log.Warn("bootstrap fetch failed, seeding defaults", zap.Error(err))
	} else {
		seed = engineapi.Seed(gs)
	}
	cancel()

	tr := transport.New(cfg.EngineURL, cfg.ReconnectDelay, log.Named("transport"))
	sess := session.New(ctx, seed, tr, cfg.IndicatorTimeout, log.Named("session"))
	tr.OnEvent(sess.HandleEvent)
	tr.OnStatus(sess.HandleStatus)
	tr.Open(ctx, cfg.GameID)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: httpapi.SetupRoutes(sess)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gateway listening", zap.String("addr", cfg.ListenAddr), zap.String("game", cfg.GameID))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		watch(gctx, sess, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sess.Inbox() <- session.Shutdown{}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("exit", zap.Error(err))
	}
}

// watch subscribes to the session and logs phase transitions, so the binary
// is useful headless.
func watch(ctx context.Context, sess *session.Session, log *zap.Logger) {
	out := make(chan session.View, 8)
	id := uuid.NewString()
	sess.Inbox() <- session.Join{ClientID: id, Outbox: out}
	defer func() {
		select {
		case sess.Inbox() <- session.Leave{ClientID: id}:
		case <-ctx.Done():
		}
	}()

	var lastPhase reducer.Phase
	var announced bool
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-out:
			if !ok {
				return
			}
			if v.State.Phase != lastPhase {
				lastPhase = v.State.Phase
				log.Info("phase",
					zap.String("phase", string(v.State.Phase)),
					zap.Int("round", v.State.Round),
					zap.String("status", string(v.Status)),
				)
			}
			if v.State.Winner != "" && !announced {
				announced = true
				log.Info("game over", zap.String("winner", v.State.Winner))
			}
		}
	}
}
