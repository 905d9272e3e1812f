package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports liveness plus the state of both backing stores.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if a.PingDB != nil {
		checks["postgres"] = "ok"
		if err := a.PingDB(ctx); err != nil {
			checks["postgres"] = "unreachable"
			healthy = false
		}
	}
	if a.PingRedis != nil {
		checks["redis"] = "ok"
		if err := a.PingRedis(ctx); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	a.json(w, code, map[string]any{"status": status, "checks": checks})
}
