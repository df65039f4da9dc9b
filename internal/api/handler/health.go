package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Welcome answers GET / with the service banner.
func (h *HealthHandler) Welcome(c echo.Context) error {
	return c.String(http.StatusOK, "WELCOME TO ECOMMERCE API")
}

const defaultProbeTimeout = 3 * time.Second

type dependencyCheck struct {
	name  string
	probe func(ctx context.Context) error
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
// A nil client is reported as skipped.
type HealthDependenciesHandler struct {
	checks  []dependencyCheck
	skipped []string
	timeout time.Duration
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client) *HealthDependenciesHandler {
	h := &HealthDependenciesHandler{timeout: defaultProbeTimeout}

	if db != nil {
		h.checks = append(h.checks, dependencyCheck{
			name: "mongodb",
			probe: func(ctx context.Context) error {
				return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
			},
		})
	} else {
		h.skipped = append(h.skipped, "mongodb")
	}

	if rdb != nil {
		h.checks = append(h.checks, dependencyCheck{
			name:  "redis",
			probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	} else {
		h.skipped = append(h.skipped, "redis")
	}
	return h
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks)+len(h.skipped))
	healthy := true

	for _, check := range h.checks {
		if err := check.probe(ctx); err != nil {
			deps[check.name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[check.name] = dependencyStatus{Status: "ok"}
	}
	for _, name := range h.skipped {
		deps[name] = dependencyStatus{Status: "skipped"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
