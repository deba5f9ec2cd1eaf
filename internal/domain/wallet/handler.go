package wallet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/server"
	"github.com/bachatbox/bachatbox/internal/storage"
)

// Handler serves the wallet routes.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler wires the wallet handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the wallet routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/wallet", h.get)
	mux.HandleFunc("POST /api/wallet/add", h.add)
	mux.HandleFunc("POST /api/wallet/pay", h.pay)
	mux.HandleFunc("GET /api/wallet/transactions", h.transactions)
}

type walletRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), storage.DemoUserID)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, view)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}
	view, err := h.svc.AddMoney(r.Context(), storage.DemoUserID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			server.BadRequest(w, err.Error())
			return
		}
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, view)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body")
		return
	}
	view, err := h.svc.Pay(r.Context(), storage.DemoUserID, req.Amount, req.Description, req.Category)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			server.BadRequest(w, err.Error())
			return
		}
		server.Error(w, h.logger, err)
		return
	}
	server.JSON(w, http.StatusOK, view)
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	wtxs, err := h.svc.Transactions(r.Context(), storage.DemoUserID)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	if wtxs == nil {
		wtxs = []storage.WalletTransaction{}
	}
	server.JSON(w, http.StatusOK, wtxs)
}
