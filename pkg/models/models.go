package models

// EngineState represents the lifecycle state of the capture engine
type EngineState string

const (
	StateUninitialized EngineState = "UNINITIALIZED"
	StateReady         EngineState = "READY"
	StateClosed        EngineState = "CLOSED"
)

// PerformanceStats is a point-in-time snapshot of request volume since startup
type PerformanceStats struct {
	Requests      int64   `json:"requests"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}
