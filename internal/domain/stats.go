package domain

// ServiceStats is a point-in-time snapshot of operational counters, served
// alongside dataset freshness on the status endpoint.
type ServiceStats struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	UpstreamErrors int64   `json:"upstream_errors"`
}
