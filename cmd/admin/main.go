package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Integrity-Ltd/energymeter-admin/internal/api"
	"github.com/Integrity-Ltd/energymeter-admin/internal/config"
	"github.com/Integrity-Ltd/energymeter-admin/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	client := api.New(config.APIURL(), config.APITimeout())
	srv := server.New(client, log.Logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info().Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := config.ListenAddr()
	log.Info().Str("addr", addr).Str("api", config.APIURL()).Msg("admin console listening")
	if err := srv.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
