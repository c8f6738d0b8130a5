package domain

import "time"

// ServiceStatus reports the logical running state of a service instance.
type ServiceStatus struct {
	Running    bool      `json:"running"`
	Service    string    `json:"service"`
	Uptime     float64   `json:"uptime"`
	Generation time.Time `json:"generation"`
}
