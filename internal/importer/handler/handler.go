// Package handler exposes the file-import endpoints.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	importservice "github.com/bachatbox/bachatbox/internal/importer/service"
	"github.com/bachatbox/bachatbox/internal/server"
	"github.com/bachatbox/bachatbox/internal/storage"
	"github.com/bachatbox/bachatbox/pkg/filestore"
)

// maxUploadBytes caps an uploaded statement at 10 MiB.
const maxUploadBytes = 10 << 20

// Handler serves the import routes.
type Handler struct {
	svc     *importservice.Service
	store   storage.Store
	archive *filestore.Archive
	logger  *slog.Logger
}

// New wires the import handler.
func New(svc *importservice.Service, store storage.Store, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, store: store, logger: logger}
}

// WithArchive keeps the original upload of each import for later inspection.
func (h *Handler) WithArchive(archive *filestore.Archive) *Handler {
	h.archive = archive
	return h
}

// Register mounts the import routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transactions/import", h.importTransactions)
	mux.HandleFunc("POST /api/wallet/import", h.importWallet)
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		server.BadRequest(w, "multipart field \"file\" is required")
		return upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		server.Error(w, h.logger, err)
		return upload{}, false
	}
	return upload{
		filename:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}, true
}

func (h *Handler) importTransactions(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.ProcessCSVTransactions(r.Context(), storage.DemoUserID, up.filename, up.data)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	h.archiveUpload(r, summary, up)
	server.JSON(w, http.StatusCreated, summary)
}

// archiveUpload keeps the raw statement; a failure only costs the copy.
func (h *Handler) archiveUpload(r *http.Request, summary *importservice.ImportSummary, up upload) {
	if h.archive == nil {
		return
	}
	if _, err := h.archive.Save(r.Context(), summary.JobID, up.filename, up.contentType, up.data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to archive upload",
			slog.String("job_id", summary.JobID.String()),
			slog.Any("error", err),
		)
	}
}

func (h *Handler) importWallet(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	providerHint := r.FormValue("provider")

	wallet, err := h.store.GetWallet(r.Context(), storage.DemoUserID)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}

	summary, err := h.svc.ImportWalletTransactions(r.Context(), wallet.ID, providerHint, up.filename, up.data)
	if err != nil {
		server.Error(w, h.logger, err)
		return
	}
	h.archiveUpload(r, summary, up)
	server.JSON(w, http.StatusCreated, summary)
}
