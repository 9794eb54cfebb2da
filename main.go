package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/assets"
	"github.com/robalobadob/battleship/apps/go-server/internal/config"
	"github.com/robalobadob/battleship/apps/go-server/internal/database"
	"github.com/robalobadob/battleship/apps/go-server/internal/httpserver"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(cfg, mem, db)
	log.Info().
		Str("port", cfg.Port).
		Interface("game", cfg.Game()).
		Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
