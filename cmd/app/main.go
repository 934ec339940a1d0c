package main

import (
	"deskhub/config"
	"deskhub/di"
	"deskhub/helper"
	"deskhub/shared/logger"

	"github.com/rs/zerolog/log"
)

//go:generate go run github.com/swaggo/swag/cmd/swag init -g cmd/app/main.go -d ../../ -o ../../docs

// @title deskhub API
// @version 1.0
// @description Meeting-room availability and reservations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
	}

	app := di.InitializeService()
	app.Serve()
}
