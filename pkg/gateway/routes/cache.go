package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/dataservice"
	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
)

type CacheHandler struct {
	service *dataservice.Service
}

func NewCacheHandler(service *dataservice.Service) *CacheHandler {
	return &CacheHandler{service: service}
}

type CacheStatsResponse struct {
	cache.Stats
	Counters metrics.Snapshot `json:"counters"`
}

func (h *CacheHandler) Register(r *mux.Router) {
	r.HandleFunc("/cache/stats", h.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/cache", h.handleClear).Methods(http.MethodDelete)
	r.HandleFunc("/preload", h.handlePreload).Methods(http.MethodPost)
}

func (h *CacheHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, CacheStatsResponse{
		Stats:    h.service.Cache().Stats(),
		Counters: metrics.Read(),
	})
}

func (h *CacheHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *CacheHandler) handlePreload(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Preload(r.Context()))
}
