package api

import (
	"time"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/cache"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/endpoints"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// VersionInfo contains build version information.
type VersionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// IndexInfo describes the in-memory lookup index.
type IndexInfo struct {
	Size     int       `json:"size"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// StatusResponse returns the artifact and index state.
type StatusResponse struct {
	Version   VersionInfo   `json:"version"`
	Artifact  *cache.Status `json:"artifact"`
	Index     *IndexInfo    `json:"index,omitempty"`
	Endpoints int           `json:"endpoints"`
}

// EndpointsResponse lists the configured feeds in artifact order.
type EndpointsResponse struct {
	Endpoints []endpoints.Endpoint `json:"endpoints"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string `json:"status"`
}
