package domain

// FinanceMetrics is the JSON snapshot served at /v1/metrics/finance.
type FinanceMetrics struct {
	TotalRequests      int64   `json:"total_requests"`
	ErrorRate          float64 `json:"error_rate"`
	ExportedRows       int64   `json:"exported_rows"`
	AllocationFailures int64   `json:"allocation_failures"`
	OwnUnitFallbacks   int64   `json:"own_unit_fallbacks"`
	LegalAIFallbacks   int64   `json:"legal_ai_fallbacks"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	Period             string  `json:"period"`
}

// ServiceHealth is the status of one dependency in /healthz.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus is the /healthz response.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}
