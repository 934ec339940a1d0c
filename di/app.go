package di

import (
	"context"
	"time"

	"deskhub/infras/kafka"
	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/transport/http"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// App is the HTTP server together with the clients it must release on shutdown.
type App struct {
	HTTP  *http.HTTP
	DB    *postgres.Connection
	Kafka kafka.Client
	Otel  otel.Otel
}

func (a *App) Serve() {
	a.HTTP.Serve(a.Close)
}

// Close flushes pending events and spans, then closes the database pools.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	if err := a.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown tracer")
	}

	if err := a.DB.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connections")
	}
}
