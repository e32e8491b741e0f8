package httpapi

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/narwhalmedia/phimdash/internal/infrastructure/storage"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

// maxUploadBytes bounds a single media upload.
const maxUploadBytes = 64 << 20

func (h *Handler) listTrash(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTrashKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.trash.List(r.Context(), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: toTrashItemResponses(items)})
}

func (h *Handler) restoreTrash(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTrashKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.trash.Restore(r.Context(), kind, req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handler) purgeTrash(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTrashKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.trash.Purge(r.Context(), kind, req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handler) emptyTrash(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTrashKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.trash.Empty(r.Context(), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handler) sweepTrash(w http.ResponseWriter, r *http.Request) {
	result, err := h.trash.Sweep(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	purged := make(map[string]int64, len(result))
	for kind, n := range result {
		purged[string(kind)] = n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purged": purged,
		"total":  result.Total(),
	})
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "multipart field file is required", err))
		return
	}
	defer file.Close()

	name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if name == "." || name == "/" || strings.HasPrefix(name, storage.TrashPrefix) {
		h.writeError(w, r, pkgerrors.BadRequest("invalid file name "+header.Filename))
		return
	}

	if err := h.media.Store(r.Context(), name, file); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			err = pkgerrors.Invalid(err)
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{FileName: name})
}

func (h *Handler) trashMedia(w http.ResponseWriter, r *http.Request) {
	file, err := h.trash.TrashMedia(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaResponse{ID: file.ID, FileName: file.FileName, DeletedAt: file.DeletedAt})
}
