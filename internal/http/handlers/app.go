package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/firstlist/presentd/internal/service"
)

// App bundles the handler dependencies injected at startup.
type App struct {
	Service *service.Presentations
	Logger  zerolog.Logger

	// Dependency pings for the health endpoint. Nil pings are skipped.
	PingDB    func(ctx context.Context) error
	PingRedis func(ctx context.Context) error
}

func NewApp(svc *service.Presentations, logger zerolog.Logger) *App {
	return &App{Service: svc, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"code": code, "message": message})
}
