package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: pkgerrors.Message(err)})
}

var (
	badRequestErrors = []error{
		domain.ErrInvalidURL,
		domain.ErrInvalidPageRange,
		domain.ErrEmptyInput,
		domain.ErrUnknownTermKind,
		domain.ErrUnknownTrashKind,
		domain.ErrInvalidLinkType,
		domain.ErrMissingLink,
		domain.ErrNameRequired,
		domain.ErrInvalidYear,
		domain.ErrNoIDs,
	}
	notFoundErrors = []error{
		domain.ErrMovieNotFound,
		domain.ErrEpisodeNotFound,
		domain.ErrTermNotFound,
	}
)

// statusOf maps application error types first, then domain sentinels.
func statusOf(err error) int {
	switch pkgerrors.TypeOf(err) {
	case pkgerrors.ErrorTypeBadRequest:
		return http.StatusBadRequest
	case pkgerrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case pkgerrors.ErrorTypeConflict:
		return http.StatusConflict
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	if errors.Is(err, domain.ErrSlugTaken) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.BadRequest("request body is required")
		}
		return pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "invalid request body", err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.BadRequest("invalid " + name + " " + raw)
	}
	return id, nil
}

func pathTermKind(r *http.Request) (domain.TermKind, error) {
	kind, err := domain.ParseTermKind(mux.Vars(r)["kind"])
	if err != nil {
		return "", pkgerrors.Invalid(err)
	}
	return kind, nil
}

func pathTrashKind(r *http.Request) (domain.TrashKind, error) {
	kind, err := domain.ParseTrashKind(mux.Vars(r)["kind"])
	if err != nil {
		return "", pkgerrors.Invalid(err)
	}
	return kind, nil
}

func wantsStream(r *http.Request) bool {
	return r.URL.Query().Get("stream") == "true" ||
		strings.Contains(r.Header.Get("Accept"), ndjsonContentType)
}
