package apihttp

import (
	"net/http"
)

// Dependencies are the services behind the HTTP API.
type Dependencies struct {
	Facilities FacilityReader
	Assets     AssetLister
	Dashboards DashboardComputer
	Queries    ReadingQuerier
	Broker     *SSEBroker
}

// Register mounts the API routes on mux.
func Register(mux *http.ServeMux, deps Dependencies) {
	health := NewHealthHandler()
	mux.Handle("GET /healthz", health)
	mux.Handle("GET /api/v1/health", health)

	mux.Handle("GET /api/v1/facilities", NewFacilitiesHandler(deps.Facilities))
	mux.Handle("GET /api/v1/facilities/{id}", NewFacilityHandler(deps.Facilities, deps.Assets))
	mux.Handle("GET /api/v1/facilities/{id}/dashboard", NewDashboardHandler(deps.Dashboards))
	mux.Handle("GET /api/v1/facilities/{id}/metrics", NewFacilityMetricsHandler(deps.Facilities, deps.Queries))
	mux.Handle("GET /api/v1/facilities/{id}/report.pdf", NewDashboardReportHandler(deps.Dashboards))
	mux.Handle("GET /api/v1/assets/{id}", NewAssetHandler(deps.Queries))

	mux.Handle("GET /api/v1/readings", NewReadingsHandler(deps.Queries))
	mux.Handle("GET /api/v1/exports/readings.csv", NewExportReadingsCSVHandler(deps.Queries))
	mux.Handle("GET /api/v1/exports/readings.xlsx", NewExportReadingsXLSXHandler(deps.Queries))

	mux.Handle("GET /api/v1/stream", NewStreamHandler(deps.Broker))
}
