package handlers

// StatusResponse is the body of the liveness and readiness probes.
type StatusResponse struct {
	Status string `json:"status" example:"ready"`
	// Reason names the first failing dependency on a 503.
	Reason string `json:"reason,omitempty" example:"no pricing endpoint configured"`
}
