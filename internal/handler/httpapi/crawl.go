package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/narwhalmedia/phimdash/internal/crawler"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

const ndjsonContentType = "application/x-ndjson"

// pingTimeout bounds the remote status probe.
const pingTimeout = 5 * time.Second

// batchFunc runs one batch crawl mode.
type batchFunc func(ctx context.Context, progress crawler.ProgressFunc) (*crawler.LogSummary, error)

func (h *Handler) synchronizer(opts *crawler.Options) *crawler.Synchronizer {
	if opts == nil {
		return h.sync
	}
	return h.sync.WithOptions(*opts)
}

func (h *Handler) crawlStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	latency, err := h.remote.Ping(ctx)
	if err != nil {
		writeJSON(w, http.StatusOK, crawlStatusResponse{Online: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, crawlStatusResponse{Online: true, LatencyMS: latency.Milliseconds()})
}

func (h *Handler) crawlLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.sync.RecentLogs(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: toCrawlLogResponses(logs)})
}

func (h *Handler) crawlPages(w http.ResponseWriter, r *http.Request) {
	var req crawlPagesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sync := h.synchronizer(req.Options)
	h.runBatch(w, r, func(ctx context.Context, progress crawler.ProgressFunc) (*crawler.LogSummary, error) {
		return sync.SynchronizeByPageRange(ctx, req.From, req.To, progress)
	})
}

func (h *Handler) crawlBulk(w http.ResponseWriter, r *http.Request) {
	var req crawlBulkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	text := strings.Join(append(req.URLs, req.Text), "\n")
	sync := h.synchronizer(req.Options)
	h.runBatch(w, r, func(ctx context.Context, progress crawler.ProgressFunc) (*crawler.LogSummary, error) {
		return sync.SynchronizeByURLList(ctx, text, progress)
	})
}

func (h *Handler) crawlMovie(w http.ResponseWriter, r *http.Request) {
	var req crawlMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.synchronizer(req.Options).SynchronizeSingle(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = statusOf(result.Err)
	}
	writeJSON(w, status, result)
}

// runBatch answers with the final summary, or streams progress records
// followed by the summary as NDJSON when the client asks for a stream.
func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, run batchFunc) {
	if !wantsStream(r) {
		summary, err := run(r.Context(), nil)
		switch {
		case err != nil && summary == nil:
			h.writeError(w, r, err)
		case err != nil:
			writeJSON(w, statusOf(err), summaryLine{Summary: summary, Error: pkgerrors.Message(err)})
		default:
			writeJSON(w, http.StatusOK, summary)
		}
		return
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", ndjsonContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	emit := func(v interface{}) {
		if err := enc.Encode(v); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	summary, err := run(r.Context(), func(p crawler.Progress) {
		emit(progressLine{Progress: &p})
	})
	line := summaryLine{Summary: summary}
	if err != nil {
		line.Error = pkgerrors.Message(err)
	}
	emit(line)
}

func (h *Handler) remoteNew(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	list, err := h.remote.ListNewMovies(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) remoteCategories(w http.ResponseWriter, r *http.Request) {
	taxa, err := h.remote.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: taxa})
}

func (h *Handler) remoteCountries(w http.ResponseWriter, r *http.Request) {
	taxa, err := h.remote.ListCountries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: taxa})
}
