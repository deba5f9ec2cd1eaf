package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bachatbox/bachatbox/internal/importer/decoder"
	"github.com/bachatbox/bachatbox/internal/storage"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error maps application errors onto HTTP statuses and writes a JSON body.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrInsufficientBalance),
		errors.Is(err, decoder.ErrUnsupportedFile),
		errors.Is(err, decoder.ErrDecode):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	}
	JSON(w, status, errorBody{Error: err.Error()})
}

// BadRequest writes a 400 with a plain message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
