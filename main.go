package main

import (
	"fmt"
	"net/http"
	"time"

	"skiff/internal/config"
	"skiff/internal/server"
)

func main() {
	cfg := config.FromEnv()
	logger := server.Logger(cfg)

	s := server.New(cfg)
	sweeper := s.StartHealthSweep(logger, 5*time.Minute)
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info().Str("root", cfg.Root).Msgf("skiff listening on http://%s", addr)

	if err := http.ListenAndServe(addr, s.Routes()); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
