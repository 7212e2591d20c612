package apihttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	domaindashboard "plant-monitor/internal/analytics/domain/dashboard"
	masterdata "plant-monitor/internal/masterdata/domain"
	telemetryapp "plant-monitor/internal/telemetry/application"
	telemetry "plant-monitor/internal/telemetry/domain"
)

const (
	timeLayout = time.RFC3339
	// Times without an offset are read as UTC.
	naiveTimeLayout = "2006-01-02T15:04:05"
)

// FacilityReader loads facilities.
type FacilityReader interface {
	Get(ctx context.Context, id int64) (*masterdata.Facility, error)
	List(ctx context.Context) ([]masterdata.Facility, error)
}

// AssetLister lists assets of a facility.
type AssetLister interface {
	List(ctx context.Context, facilityID *int64) ([]masterdata.Asset, error)
}

// DashboardComputer computes facility dashboards.
type DashboardComputer interface {
	ComputeDashboard(ctx context.Context, facilityID int64) (*domaindashboard.Summary, error)
}

// ReadingQuerier serves reading queries.
type ReadingQuerier interface {
	QueryReadings(ctx context.Context, filter telemetry.ReadingFilter) ([]telemetry.Reading, error)
	AssetDetail(ctx context.Context, assetID int64) (*telemetryapp.AssetSnapshot, error)
	FacilityMetrics(ctx context.Context, facilityID int64) ([]telemetry.MetricInfo, error)
}

// HealthHandler serves liveness checks.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: func() time.Time { return time.Now().UTC() }}
}

// ServeHTTP handles GET /api/v1/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": h.now()})
}

// FacilitiesHandler lists facilities.
type FacilitiesHandler struct {
	facilities FacilityReader
}

// NewFacilitiesHandler constructs a FacilitiesHandler.
func NewFacilitiesHandler(facilities FacilityReader) *FacilitiesHandler {
	return &FacilitiesHandler{facilities: facilities}
}

// ServeHTTP handles GET /api/v1/facilities.
func (h *FacilitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.facilities == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	facilities, err := h.facilities.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]facilityBrief, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, toFacilityBrief(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// FacilityHandler serves one facility with its assets.
type FacilityHandler struct {
	facilities FacilityReader
	assets     AssetLister
}

// NewFacilityHandler constructs a FacilityHandler.
func NewFacilityHandler(facilities FacilityReader, assets AssetLister) *FacilityHandler {
	return &FacilityHandler{facilities: facilities, assets: assets}
}

// ServeHTTP handles GET /api/v1/facilities/{id}.
func (h *FacilityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.facilities == nil || h.assets == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	id, err := parsePathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	facility, err := h.facilities.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	assets, err := h.assets.List(r.Context(), &facility.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := facilityDetail{facilityBrief: toFacilityBrief(*facility), Assets: make([]assetBrief, 0, len(assets))}
	for _, a := range assets {
		out.Assets = append(out.Assets, toAssetBrief(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// DashboardHandler serves facility dashboards.
type DashboardHandler struct {
	dashboards DashboardComputer
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboards DashboardComputer) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// ServeHTTP handles GET /api/v1/facilities/{id}/dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.dashboards == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	id, err := parsePathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.dashboards.ComputeDashboard(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardOut(summary))
}

// FacilityMetricsHandler lists the metrics reported within a facility.
type FacilityMetricsHandler struct {
	facilities FacilityReader
	queries    ReadingQuerier
}

// NewFacilityMetricsHandler constructs a FacilityMetricsHandler.
func NewFacilityMetricsHandler(facilities FacilityReader, queries ReadingQuerier) *FacilityMetricsHandler {
	return &FacilityMetricsHandler{facilities: facilities, queries: queries}
}

// ServeHTTP handles GET /api/v1/facilities/{id}/metrics.
func (h *FacilityMetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.facilities == nil || h.queries == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	id, err := parsePathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.facilities.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	infos, err := h.queries.FacilityMetrics(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]metricInfoOut, 0, len(infos))
	for _, info := range infos {
		out = append(out, metricInfoOut{MetricName: info.MetricName, Unit: info.Unit})
	}
	writeJSON(w, http.StatusOK, out)
}

// AssetHandler serves asset detail with the latest reading per metric.
type AssetHandler struct {
	queries ReadingQuerier
}

// NewAssetHandler constructs an AssetHandler.
func NewAssetHandler(queries ReadingQuerier) *AssetHandler {
	return &AssetHandler{queries: queries}
}

// ServeHTTP handles GET /api/v1/assets/{id}.
func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.queries == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	id, err := parsePathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snapshot, err := h.queries.AssetDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	asset := snapshot.Asset
	writeJSON(w, http.StatusOK, assetDetail{
		ID:             asset.ID,
		FacilityID:     asset.FacilityID,
		Name:           asset.Name,
		AssetType:      asset.AssetType,
		Status:         string(asset.Status),
		CreatedAt:      asset.CreatedAt.UTC(),
		LatestReadings: toReadingsOut(snapshot.LatestReadings),
	})
}

// ReadingsHandler serves filtered reading queries.
type ReadingsHandler struct {
	queries ReadingQuerier
}

// NewReadingsHandler constructs a ReadingsHandler.
func NewReadingsHandler(queries ReadingQuerier) *ReadingsHandler {
	return &ReadingsHandler{queries: queries}
}

// ServeHTTP handles GET /api/v1/readings.
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var queries ReadingQuerier
	if h != nil {
		queries = h.queries
	}
	readings, ok := queryFromRequest(w, r, queries)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReadingsOut(readings))
}

// ExportReadingsCSVHandler serves reading CSV exports.
type ExportReadingsCSVHandler struct {
	queries ReadingQuerier
}

// NewExportReadingsCSVHandler constructs an ExportReadingsCSVHandler.
func NewExportReadingsCSVHandler(queries ReadingQuerier) *ExportReadingsCSVHandler {
	return &ExportReadingsCSVHandler{queries: queries}
}

// ServeHTTP handles GET /api/v1/exports/readings.csv.
func (h *ExportReadingsCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var queries ReadingQuerier
	if h != nil {
		queries = h.queries
	}
	readings, ok := queryFromRequest(w, r, queries)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write(readingColumns)
	for _, reading := range readings {
		_ = writer.Write([]string{
			formatInt64(reading.ID),
			formatInt64(reading.AssetID),
			reading.MetricName,
			formatFloat(reading.Value),
			reading.Unit,
			formatTime(reading.Timestamp),
		})
	}
	writer.Flush()
}

// ExportReadingsXLSXHandler serves reading spreadsheet exports.
type ExportReadingsXLSXHandler struct {
	queries ReadingQuerier
}

// NewExportReadingsXLSXHandler constructs an ExportReadingsXLSXHandler.
func NewExportReadingsXLSXHandler(queries ReadingQuerier) *ExportReadingsXLSXHandler {
	return &ExportReadingsXLSXHandler{queries: queries}
}

// ServeHTTP handles GET /api/v1/exports/readings.xlsx.
func (h *ExportReadingsXLSXHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var queries ReadingQuerier
	if h != nil {
		queries = h.queries
	}
	readings, ok := queryFromRequest(w, r, queries)
	if !ok {
		return
	}
	payload, err := BuildReadingsXLSX(readings)
	if err != nil {
		http.Error(w, "export readings error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.xlsx"`)
	_, _ = w.Write(payload)
}

// DashboardReportHandler renders a facility dashboard as PDF.
type DashboardReportHandler struct {
	dashboards DashboardComputer
}

// NewDashboardReportHandler constructs a DashboardReportHandler.
func NewDashboardReportHandler(dashboards DashboardComputer) *DashboardReportHandler {
	return &DashboardReportHandler{dashboards: dashboards}
}

// ServeHTTP handles GET /api/v1/facilities/{id}/report.pdf.
func (h *DashboardReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.dashboards == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	id, err := parsePathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.dashboards.ComputeDashboard(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	payload, err := BuildDashboardPDF(summary)
	if err != nil {
		http.Error(w, "render report error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="facility-%d.pdf"`, id))
	_, _ = w.Write(payload)
}

var readingColumns = []string{"id", "asset_id", "metric_name", "value", "unit", "timestamp"}

func queryFromRequest(w http.ResponseWriter, r *http.Request, queries ReadingQuerier) ([]telemetry.Reading, bool) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil, false
	}
	if queries == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return nil, false
	}
	filter, err := parseReadingFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	readings, err := queries.QueryReadings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return readings, true
}

func parseReadingFilter(r *http.Request) (telemetry.ReadingFilter, error) {
	var filter telemetry.ReadingFilter
	query := r.URL.Query()

	if value := query.Get("facility_id"); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return filter, errors.New("facility_id must be an integer")
		}
		filter.FacilityID = &id
	}
	if value := query.Get("asset_id"); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return filter, errors.New("asset_id must be an integer")
		}
		filter.AssetID = &id
	}
	if value := query.Get("metric_name"); value != "" {
		filter.MetricName = &value
	}
	if query.Get("start_time") != "" {
		start, err := parseTimeQuery(r, "start_time")
		if err != nil {
			return filter, err
		}
		filter.Start = &start
	}
	if query.Get("end_time") != "" {
		end, err := parseTimeQuery(r, "end_time")
		if err != nil {
			return filter, err
		}
		filter.End = &end
	}
	if value := query.Get("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil {
			return filter, errors.New("limit must be an integer")
		}
		filter = filter.WithLimit(limit)
	}
	return filter, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, masterdata.ErrFacilityNotFound):
		http.Error(w, "facility not found", http.StatusNotFound)
	case errors.Is(err, masterdata.ErrAssetNotFound):
		http.Error(w, "asset not found", http.StatusNotFound)
	case errors.Is(err, telemetry.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func parsePathID(r *http.Request, key string) (int64, error) {
	value := r.PathValue(key)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return id, nil
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		parsed, err = time.ParseInLocation(naiveTimeLayout, value, time.UTC)
		if err != nil {
			return time.Time{}, errors.New(key + " must be RFC3339 or YYYY-MM-DDTHH:MM:SS")
		}
	}
	return parsed.UTC(), nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(timeLayout)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}
