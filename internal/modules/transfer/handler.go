package transfer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkandawire/explotrack-backend/internal/httpx"
)

// Handler exposes transfer workflow HTTP endpoints.
type Handler struct {
	service           Service
	urgentWindowHours int
}

func NewHandler(service Service, urgentWindowHours int) *Handler {
	return &Handler{service: service, urgentWindowHours: urgentWindowHours}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/transfers", func(r chi.Router) {
		r.Post("/", h.create)                        // POST /api/v1/transfers
		r.Get("/", h.list)                           // GET  /api/v1/transfers?status=PENDING&store=...&overdue=true
		r.Get("/{id}", h.get)                        // GET  /api/v1/transfers/{id}
		r.Get("/number/{number}", h.getByNumber)     // GET  /api/v1/transfers/number/{number}
		r.Post("/{id}/approve", h.approve)           // POST /api/v1/transfers/{id}/approve
		r.Post("/{id}/reject", h.reject)             // POST /api/v1/transfers/{id}/reject
		r.Post("/{id}/dispatch", h.dispatch)         // POST /api/v1/transfers/{id}/dispatch
		r.Post("/{id}/confirm-delivery", h.confirm)  // POST /api/v1/transfers/{id}/confirm-delivery
		r.Post("/{id}/complete", h.complete)         // POST /api/v1/transfers/{id}/complete
		r.Delete("/{id}", h.cancel)                  // DELETE /api/v1/transfers/{id}?reason=...
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dto, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, dto)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		Status:             Status(q.Get("status")),
		DestinationStoreID: q.Get("store"),
		RequestedByUserID:  q.Get("requested_by"),
		OverdueOnly:        q.Get("overdue") == "true",
		SortAscending:      q.Get("sort") == "oldest",
	}
	if q.Get("urgent") == "true" {
		f.UrgentWithinHours = h.urgentWindowHours
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	dtos, total, err := h.service.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"items": dtos, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dto, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dto, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dto, err := h.service.Dispatch(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.ConfirmDelivery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dto, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("reason")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "transfer cancelled"})
}
