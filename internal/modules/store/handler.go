package store

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkandawire/explotrack-backend/internal/httpx"
	"github.com/mkandawire/explotrack-backend/internal/modules/explosive"
)

// Handler exposes store HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Post("/", h.createStore)                        // POST  /api/v1/stores
		r.Get("/", h.listStores)                          // GET   /api/v1/stores?region=north&status=OPERATIONAL
		r.Get("/{id}", h.getStore)                        // GET   /api/v1/stores/{id}
		r.Patch("/{id}/status", h.updateStatus)           // PATCH /api/v1/stores/{id}/status
		r.Get("/{id}/inventory", h.getInventory)          // GET   /api/v1/stores/{id}/inventory
		r.Put("/{id}/inventory/levels", h.setStockLevels) // PUT   /api/v1/stores/{id}/inventory/levels
		r.Post("/{id}/inventory/reserve", h.reserveStock) // POST  /api/v1/stores/{id}/inventory/reserve
		r.Post("/{id}/inventory/release", h.releaseStock) // POST  /api/v1/stores/{id}/inventory/release
		r.Post("/{id}/inventory/adjust", h.adjustStock)   // POST  /api/v1/stores/{id}/inventory/adjust
		r.Get("/{id}/transactions", h.listTransactions)   // GET   /api/v1/stores/{id}/transactions?limit=50
		r.Get("/{id}/alerts", h.stockAlerts)              // GET   /api/v1/stores/{id}/alerts
	})
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	st, err := h.service.CreateStore(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.ListStores(r.Context(), r.URL.Query().Get("region"), Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stores)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.GetStore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	st, err := h.service.UpdateStoreStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) getInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetInventory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) setStockLevels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExplosiveType explosive.Type `json:"explosive_type"`
		Minimum       *float64       `json:"minimum_stock_level"`
		Maximum       *float64       `json:"maximum_stock_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.SetStockLevels(r.Context(), chi.URLParam(r, "id"), req.ExplosiveType, req.Minimum, req.Maximum)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type stockOpRequest struct {
	ExplosiveType explosive.Type `json:"explosive_type"`
	Quantity      float64        `json:"quantity"`
}

func (h *Handler) reserveStock(w http.ResponseWriter, r *http.Request) {
	var req stockOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.ReserveStock(r.Context(), chi.URLParam(r, "id"), req.ExplosiveType, req.Quantity)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) releaseStock(w http.ResponseWriter, r *http.Request) {
	var req stockOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.ReleaseStock(r.Context(), chi.URLParam(r, "id"), req.ExplosiveType, req.Quantity)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	req.StoreID = chi.URLParam(r, "id")
	inv, err := h.service.AdjustStock(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txns, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txns)
}

func (h *Handler) stockAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.StockAlerts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, alerts)
}
