package driving

import "context"

// ComponentHealth is the result of probing one dependency.
type ComponentHealth struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport aggregates component probes.
type HealthReport struct {
	Healthy    bool              `json:"healthy"`
	Components []ComponentHealth `json:"components"`
}

// HealthService probes the store and providers.
type HealthService interface {
	Check(ctx context.Context) HealthReport
}
