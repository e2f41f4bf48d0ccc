package routes

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/transfusion-vitals/pkg/charts"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/dataservice"
)

type DashboardHandler struct {
	service *dataservice.Service
}

func NewDashboardHandler(service *dataservice.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// ChartResponse carries both the structured series and the flattened Chart.js
// datasets built from them.
type ChartResponse struct {
	Window   models.TimeRange        `json:"window"`
	Selected []string                `json:"selected,omitempty"`
	Options  charts.DisplayOptions   `json:"options"`
	Series   []charts.CategorySeries `json:"series"`
	Datasets []charts.Dataset        `json:"datasets"`
}

func (h *DashboardHandler) Register(r *mux.Router) {
	r.HandleFunc("/index", h.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/catalog", h.handleCatalog).Methods(http.MethodGet)
	r.HandleFunc("/vitals", h.handleVitals).Methods(http.MethodGet)
	r.HandleFunc("/vitals/{vital}/factors", h.handleFactors).Methods(http.MethodGet)

	r.HandleFunc("/visualization/{vital}/{factor}", h.handleVisualization).Methods(http.MethodGet)
	r.HandleFunc("/visualization/{vital}/{factor}/chart", h.handleVisualizationChart).Methods(http.MethodGet)
	r.HandleFunc("/transfusion/{vital}", h.handleTransfusion).Methods(http.MethodGet)
	r.HandleFunc("/transfusion/{vital}/chart", h.handleTransfusionChart).Methods(http.MethodGet)

	// multispan must be registered before the {vital} pattern.
	r.HandleFunc("/loess/multispan", h.handleLoessMultiSpan).Methods(http.MethodGet)
	r.HandleFunc("/loess/{vital}", h.handleLoessVital).Methods(http.MethodGet)
	r.HandleFunc("/loess", h.handleLoess).Methods(http.MethodGet)

	r.HandleFunc("/summaries/observed", h.handleObservedSummary).Methods(http.MethodGet)
	r.HandleFunc("/summaries/model", h.handleModelSummary).Methods(http.MethodGet)
	r.HandleFunc("/summaries/joined", h.handleJoinedSummaries).Methods(http.MethodGet)
	r.HandleFunc("/summaries/factor-observed", h.handleFactorObservedSummary).Methods(http.MethodGet)
	r.HandleFunc("/summaries/factor-model", h.handleFactorModelSummary).Methods(http.MethodGet)

	r.HandleFunc("/descriptive", h.handleDescriptive).Methods(http.MethodGet)
}

// respond writes v, or the mapped error when err is set.
func respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *DashboardHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	index, err := h.service.VizIndex(r.Context())
	respond(w, r, index, err)
}

func (h *DashboardHandler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Catalog())
}

func (h *DashboardHandler) handleVitals(w http.ResponseWriter, r *http.Request) {
	vitals, err := h.service.AvailableVitalParams(r.Context())
	respond(w, r, vitals, err)
}

func (h *DashboardHandler) handleFactors(w http.ResponseWriter, r *http.Request) {
	factors, err := h.service.AvailableCompFactors(r.Context(), mux.Vars(r)["vital"])
	respond(w, r, factors, err)
}

func (h *DashboardHandler) handleVisualization(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data, err := h.service.VisualizationData(r.Context(), vars["vital"], vars["factor"])
	respond(w, r, data, err)
}

func (h *DashboardHandler) handleVisualizationChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data, err := h.service.VisualizationData(r.Context(), vars["vital"], vars["factor"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	q, err := parseChartQuery(r.URL.Query(), data.Metadata.TimeRange)
	if err != nil {
		writeError(w, r, err)
		return
	}
	selected := q.selected
	if !q.hasSelection {
		selected = data.ComparisonValues
	}

	series := charts.PrepareVisualization(data.Rows, selected, q.window, q.opts)
	writeChart(w, r, fmt.Sprintf("%s_%s", vars["vital"], vars["factor"]), ChartResponse{
		Window:   q.window,
		Selected: selected,
		Options:  q.opts,
		Series:   series,
	})
}

func (h *DashboardHandler) handleTransfusion(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TransfusionData(r.Context(), mux.Vars(r)["vital"])
	respond(w, r, rows, err)
}

func (h *DashboardHandler) handleTransfusionChart(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TransfusionData(r.Context(), mux.Vars(r)["vital"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	dataRange := models.EmptyTimeRange()
	for _, row := range rows {
		dataRange = dataRange.Extend(row.TimeFromTransfusion)
	}
	q, err := parseChartQuery(r.URL.Query(), dataRange)
	if err != nil {
		writeError(w, r, err)
		return
	}

	series := charts.PrepareTransfusion(rows, q.window, q.opts)
	writeChart(w, r, mux.Vars(r)["vital"]+"_transfusion", ChartResponse{
		Window:  q.window,
		Options: q.opts,
		Series:  series,
	})
}

// writeChart answers with JSON, or with the series as a CSV download when
// format=csv is given.
func writeChart(w http.ResponseWriter, r *http.Request, name string, resp ChartResponse) {
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
		if err := charts.WriteCSV(w, resp.Series); err != nil {
			logger.Log.WithError(err).Error("failed to write csv response")
		}
		return
	}
	resp.Datasets = charts.ChartJSDatasets(resp.Series)
	writeJSON(w, resp)
}

func (h *DashboardHandler) handleLoess(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.LoessData(r.Context()))
}

func (h *DashboardHandler) handleLoessVital(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.LoessDataForVital(r.Context(), mux.Vars(r)["vital"]))
}

// handleLoessMultiSpan returns the wide rows, or one span's narrow rows when
// span is given.
func (h *DashboardHandler) handleLoessMultiSpan(w http.ResponseWriter, r *http.Request) {
	span, ok, err := intParam(r.URL.Query(), "span")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := h.service.LoessMultiSpanData(r.Context())
	if !ok {
		writeJSON(w, rows)
		return
	}
	narrow, err := dataservice.ExtractLoessForSpan(rows, span)
	respond(w, r, narrow, err)
}

func (h *DashboardHandler) handleObservedSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ObservedDataSummary(r.Context())
	respond(w, r, rows, err)
}

func (h *DashboardHandler) handleModelSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ModelBasedSummary(r.Context())
	respond(w, r, rows, err)
}

func (h *DashboardHandler) handleJoinedSummaries(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.service.VitalSummaries(r.Context())
	respond(w, r, pairs, err)
}

func (h *DashboardHandler) handleFactorObservedSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.FactorObservedSummary(r.Context())
	respond(w, r, rows, err)
}

func (h *DashboardHandler) handleFactorModelSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.FactorModelSummary(r.Context())
	respond(w, r, rows, err)
}

func (h *DashboardHandler) handleDescriptive(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DescriptiveStatistics(r.Context())
	respond(w, r, stats, err)
}
