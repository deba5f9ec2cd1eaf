package transactions

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

// Handler serves the transactions routes.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler wires the transactions handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the transactions routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/transactions", h.list)
	mux.HandleFunc("POST /api/transactions", h.create)
	mux.HandleFunc("PUT /api/transactions/{id}", h.update)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.delete)
	mux.HandleFunc("GET /api/transactions/search", h.search)
	mux.HandleFunc("GET /api/transactions/export", h.export)
	mux.HandleFunc("GET /api/transactions/summary", h.summary)
}

type transactionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	TransactionType string          `json:"transactionType"`
	Date            time.Time       `json:"date"`
}

func (r transactionRequest) validate() string {
	if r.TransactionType != "income" && r.TransactionType != "expense" {
		return "transactionType must be income or expense"
	}
	if r.Amount.IsNegative() {
		return "amount must not be negative"
	}
	return ""
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := storage.TransactionFilter{
		Type:     r.URL.Query().Get("type"),
		Category: r.URL.Query().Get("category"),
	}
	txs, err := h.svc.List(r.Context(), storage.DemoUserID, filter)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	if txs == nil {
		txs = []storage.Transaction{}
	}
	server.JSON(w, http.StatusOK, txs)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		server.BadRequest(w, msg)
		return
	}

	created, err := h.svc.Create(r.Context(), storage.Transaction{
		UserID:          storage.DemoUserID,
		Amount:          req.Amount,
		Description:     req.Description,
		Category:        req.Category,
		TransactionType: req.TransactionType,
		Date:            req.Date,
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
		server.BadRequest(w, "invalid transaction id")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		server.BadRequest(w, msg)
		return
	}

	updated, err := h.svc.Update(r.Context(), storage.Transaction{
		ID:              id,
		UserID:          storage.DemoUserID,
		Amount:          req.Amount,
		Description:     req.Description,
		Category:        req.Category,
		TransactionType: req.TransactionType,
		Date:            req.Date,
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
		server.BadRequest(w, "invalid transaction id")
		return
	}
	if err := h.svc.Delete(r.Context(), storage.DemoUserID, id); err != nil {
		server.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		server.BadRequest(w, "query parameter \"q\" is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.svc.Search(r.Context(), storage.DemoUserID, query, limit)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, txs)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ExportCSV(r.Context(), storage.DemoUserID)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	_, _ = w.Write([]byte(out))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	at := time.Now()
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			server.BadRequest(w, "month must look like 2024-03")
			return
		}
		at = parsed
	}
	summary, err := h.svc.Summary(r.Context(), storage.DemoUserID, at)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, summary)
}
