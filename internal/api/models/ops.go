package models

// Health represents the liveness or readiness of the service.
type Health struct {
	Status  HealthStatus      `json:"status"`
	Time    Timestamp         `json:"time"`
	Details map[string]string `json:"details,omitempty"`
}

// SystemStatus is the operational view of the service and its upstreams.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Version   string           `json:"version"`
	BuildTime string           `json:"buildTime,omitempty"`
	Features  FeatureStatus    `json:"features"`
	Providers []ProviderStatus `json:"providers"`
}

// FeatureStatus reports which upstream-backed features are live. When a
// provider is not configured the feature runs on its fallback.
type FeatureStatus struct {
	RouteSource       string `json:"routeSource"`
	RealRoutes        bool   `json:"realRoutes"`
	AssistantEnabled  bool   `json:"assistantEnabled"`
	EventsPublisher   string `json:"eventsPublisher"`
	ChallengeRollover string `json:"challengeRollover,omitempty"`
}

// ProviderStatus represents the circuit-breaker health of an upstream.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	Requests            uint32       `json:"requests"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}
