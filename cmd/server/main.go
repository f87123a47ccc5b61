package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/kushgupta-hiver/mahjongd/internal/config"
	"github.com/kushgupta-hiver/mahjongd/internal/engine"
	"github.com/kushgupta-hiver/mahjongd/internal/game"
	"github.com/kushgupta-hiver/mahjongd/internal/session"
	"github.com/kushgupta-hiver/mahjongd/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	director := game.NewDirector(engine.NewRules(), log)
	defer director.Close()

	wsHandler := ws.NewServer(ws.Config{HandshakeTimeout: cfg.HandshakeTimeout}, director, log)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mahjongd " + session.ServerVersion + "\nConnect: ws://<host>/ws\n"))
	}))

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Addr).Str("version", session.ServerVersion).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
