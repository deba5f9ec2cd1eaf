package goals

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/server"
	"github.com/bachatbox/bachatbox/internal/storage"
)

// Handler serves the goals routes.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler wires the goals handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the goals routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/goals", h.list)
	mux.HandleFunc("POST /api/goals", h.create)
	mux.HandleFunc("PUT /api/goals/{id}", h.update)
	mux.HandleFunc("DELETE /api/goals/{id}", h.delete)
	mux.HandleFunc("POST /api/goals/{id}/contribute", h.contribute)
	mux.HandleFunc("GET /api/goals/{id}/plan", h.plan)
}

type goalRequest struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      time.Time       `json:"deadline"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.List(r.Context(), storage.DemoUserID)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	if goals == nil {
		goals = []storage.Goal{}
	}
	server.JSON(w, http.StatusOK, goals)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		server.BadRequest(w, "name is required")
		return
	}
	if !req.TargetAmount.IsPositive() {
		server.BadRequest(w, "targetAmount must be positive")
		return
	}

	created, err := h.svc.Create(r.Context(), storage.Goal{
		UserID:        storage.DemoUserID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
	})
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusCreated, created)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		server.BadRequest(w, "invalid goal id")
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}

	updated, err := h.svc.Update(r.Context(), storage.Goal{
		ID:            id,
		UserID:        storage.DemoUserID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
	})
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		server.BadRequest(w, "invalid goal id")
		return
	}
	if err := h.svc.Delete(r.Context(), storage.DemoUserID, id); err != nil {
		server.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		server.BadRequest(w, "invalid goal id")
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}

	updated, err := h.svc.Contribute(r.Context(), storage.DemoUserID, id, req.Amount)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, updated)
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		server.BadRequest(w, "invalid goal id")
		return
	}
	income := decimal.Zero
	if raw := r.URL.Query().Get("monthlyIncome"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			server.BadRequest(w, "monthlyIncome must be a number")
			return
		}
		income = parsed
	}

	plan, err := h.svc.Plan(r.Context(), storage.DemoUserID, id, income, time.Now())
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, plan)
}
