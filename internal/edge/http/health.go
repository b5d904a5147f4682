package http

import (
	"net/http"
	"time"

	"github.com/discoveruz/edge/internal/edge/store"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/redis/go-redis/v9"
)

type healthChecks struct {
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

// LivezHandler always answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler checks the store and, when configured, the redis rate
// limit backend. A redis outage only degrades the report; the limiter
// keeps enforcing from its in-memory fallback.
func ReadyzHandler(startTime time.Time, version string, st store.Store, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if rdb != nil {
			checks.Redis = "ok"
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				checks.Redis = "error: " + err.Error()
				if overallStatus == "ok" {
					overallStatus = "degraded"
				}
			}
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
