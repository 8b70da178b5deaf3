package handler

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/onejourney/onejourney/internal/api/models"
	"github.com/onejourney/onejourney/internal/api/response"
	"github.com/onejourney/onejourney/internal/provider/resilience"
)

// OpsConfig holds what the operational endpoints report.
type OpsConfig struct {
	Version   string
	BuildTime string
	Registry  *resilience.Registry
	Features  models.FeatureStatus
	Now       func() time.Time
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	features  models.FeatureStatus
	now       func() time.Time
	draining  atomic.Bool
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		features:  cfg.Features,
		now:       now,
	}
}

// Drain marks the service as shutting down so readiness fails and load
// balancers stop routing new traffic.
func (h *OpsHandler) Drain() {
	h.draining.Store(true)
}

// HealthCheck handles GET /api/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]string{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /api/ops/ready - readiness check. Upstream
// outages do not affect readiness because every feature has a fallback.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		response.ServiceUnavailable(w, r, "service is shutting down")
		return
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
	})
}

// SystemStatus handles GET /api/ops/status - upstream circuit-breaker health
// and which features run on real data.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	providers := h.providerStatuses()

	overall := models.HealthStatusOK
	for _, p := range providers {
		if p.Status != models.HealthStatusOK {
			overall = models.HealthStatusDegraded
			break
		}
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:    overall,
		Time:      models.Timestamp(h.now()),
		Version:   h.version,
		BuildTime: h.buildTime,
		Features:  h.features,
		Providers: providers,
	})
}

func (h *OpsHandler) providerStatuses() []models.ProviderStatus {
	if h.registry == nil {
		return []models.ProviderStatus{}
	}

	all := h.registry.Snapshot()
	out := make([]models.ProviderStatus, 0, len(all))
	for _, ph := range all {
		ps := models.ProviderStatus{
			Provider:            ph.Name,
			Status:              healthStatus(ph),
			CircuitState:        ph.CircuitState.String(),
			Requests:            ph.Counts.Requests,
			ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
			LastSuccessAt:       models.TimestampPtr(ph.LastSuccessAt),
			LastFailureAt:       models.TimestampPtr(ph.LastFailureAt),
		}
		if ph.LastError != "" {
			msg := ph.LastError
			ps.Message = &msg
		}
		out = append(out, ps)
	}
	return out
}

func healthStatus(ph *resilience.ProviderHealth) models.HealthStatus {
	switch ph.Level() {
	case resilience.LevelDown:
		return models.HealthStatusFail
	case resilience.LevelDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
