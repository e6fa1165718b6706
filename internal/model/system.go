package model

// HealthStatus reports the state of the service and its dependencies.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Quotes   string `json:"quotes"`
	Advisor  string `json:"advisor"`
	Error    string `json:"error,omitempty"`
}
