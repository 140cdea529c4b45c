package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/NINESTRING/my-place/internal/logging"
	"github.com/NINESTRING/my-place/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.SetGlobal(logging.New(logging.Config{}))
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.SetGlobal(logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	}))

	db, err := openDatabase(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	dataStore := store.New(db)

	if err := bootstrapDemoData(context.Background(), db, dataStore); err != nil {
		log.Fatal().Err(err).Msg("bootstrap demo data")
	}

	handler := newHTTPHandler(cfg, dataStore)

	log.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
