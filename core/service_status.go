package core

import "time"

const (
	HealthStatusHealthy = "healthy"
	HealthStatusError   = "error"
)

// ServiceStatus describes what the factory would build for one capability.
// Initialized is true only once the instance has actually been constructed.
type ServiceStatus struct {
	Provider    string `json:"provider"`
	Engine      string `json:"engine"`
	IsDemo      bool   `json:"isDemo"`
	Initialized bool   `json:"initialized"`
}

type ServiceStatusReport struct {
	Mode    Mode          `json:"mode"`
	Payment ServiceStatus `json:"payment"`
	Email   ServiceStatus `json:"email"`
	Storage ServiceStatus `json:"storage"`
}

// ServiceValidation aggregates constructor failures without failing itself.
type ServiceValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type CapabilityHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ServiceHealth is healthy only when every capability is.
type ServiceHealth struct {
	Healthy   bool                            `json:"healthy"`
	Services  map[Capability]CapabilityHealth `json:"services"`
	CheckedAt time.Time                       `json:"checkedAt"`
}

func (h ServiceHealth) Clone() ServiceHealth {
	out := h
	out.Services = make(map[Capability]CapabilityHealth, len(h.Services))
	for capability, status := range h.Services {
		out.Services[capability] = status
	}
	return out
}
