package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/MatiMita/Futnova/internal/config"
	"github.com/MatiMita/Futnova/internal/store"
	"github.com/MatiMita/Futnova/internal/web"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cargando configuración")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conectando a postgres")
		}
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrando esquema")
		}
		st = pg
	} else {
		mg, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conectando a mongodb")
		}
		st = mg
	}
	defer st.Close(context.Background())

	server := web.NewServer(st, []byte(cfg.JWTSecret), log)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("servidor iniciado")
	if err := http.ListenAndServe(addr, server.Routes()); err != nil {
		log.Fatal().Err(err).Msg("servidor detenido")
	}
}
