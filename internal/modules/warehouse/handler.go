package warehouse

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkandawire/explotrack-backend/internal/httpx"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// Handler exposes central warehouse HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/warehouse/batches", func(r chi.Router) {
		r.Post("/", h.createBatch)                       // POST   /api/v1/warehouse/batches
		r.Get("/", h.listBatches)                        // GET    /api/v1/warehouse/batches?type=ANFO&status=AVAILABLE&page=1
		r.Get("/{id}", h.getBatch)                       // GET    /api/v1/warehouse/batches/{id}
		r.Get("/number/{batch_id}", h.getBatchByNumber)  // GET    /api/v1/warehouse/batches/number/{batch_id}
		r.Put("/{id}/properties/anfo", h.updateANFO)     // PUT    /api/v1/warehouse/batches/{id}/properties/anfo
		r.Put("/{id}/properties/emulsion", h.updateEmulsion)
		r.Patch("/{id}/quality", h.setQuality)           // PATCH  /api/v1/warehouse/batches/{id}/quality
		r.Post("/{id}/quarantine", h.quarantine)         // POST   /api/v1/warehouse/batches/{id}/quarantine
		r.Delete("/{id}/quarantine", h.releaseQuarantine)
		r.Post("/{id}/expire", h.markExpired)            // POST   /api/v1/warehouse/batches/{id}/expire
		r.Delete("/{id}", h.deactivate)                  // DELETE /api/v1/warehouse/batches/{id}
	})
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b, err := h.service.CreateBatch(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		ExplosiveType: explosive.Type(q.Get("type")),
		Status:        BatchStatus(q.Get("status")),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	f.ExpiringWithinDays, _ = strconv.Atoi(q.Get("expiring_within_days"))

	batches, total, err := h.service.ListBatches(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"items": batches, "total": total})
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) getBatchByNumber(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBatchByNumber(r.Context(), chi.URLParam(r, "batch_id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) updateANFO(w http.ResponseWriter, r *http.Request) {
	var p explosive.ANFOProperties
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b, err := h.service.UpdateANFOProperties(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) updateEmulsion(w http.ResponseWriter, r *http.Request) {
	var p explosive.EmulsionProperties
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b, err := h.service.UpdateEmulsionProperties(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) setQuality(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status explosive.QualityStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b, err := h.service.SetQualityStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) quarantine(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.QuarantineBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) releaseQuarantine(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ReleaseQuarantine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) markExpired(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.MarkExpired(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateBatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "batch deactivated"})
}
