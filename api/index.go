package handler

import (
	"net/http"
	"sync"

	"deskhub/config"
	"deskhub/di"
	"deskhub/shared/logger"
)

var (
	once    sync.Once
	handler http.Handler
)

// Handler is the serverless entrypoint. The router is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		handler = di.InitializeService().HTTP.Handler()
	})

	r.RequestURI = r.URL.String()

	handler.ServeHTTP(w, r)
}
