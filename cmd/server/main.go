package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fenrir/internal/config"
	"fenrir/internal/engine"
	"fenrir/internal/fanout"
	"fenrir/internal/telemetry"
	"fenrir/internal/transport/httpapi"
	"github.com/rs/zerolog/log"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/server.toml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	telemetry.InitLogging(cfg.LogLevel)

	eng := engine.New(cfg.DispatchShards)

	if cfg.RedisEnabled {
		sink := fanout.NewRedisSink(cfg.RedisAddr)
		eng.RegisterTradeSink(sink.OnTrade)
		eng.RegisterBBOSink(sink.OnBBO)
		defer sink.Close()
	}

	router := httpapi.NewRouter(eng, cfg.DepthDefault)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if err := eng.Stop(); err != nil {
		log.Error().Err(err).Msg("engine dispatch pool shutdown")
	}
}
