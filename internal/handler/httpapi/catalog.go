package httpapi

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/service"
	"github.com/narwhalmedia/phimdash/pkg/pagination"
)

func (h *Handler) listMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))

	movies, meta, err := h.movies.ListMovies(r.Context(), service.MovieQuery{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Year:   year,
		Page:   pagination.Parse(q.Get("page"), q.Get("limit")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: toMovieResponses(movies), Pagination: &meta})
}

func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	movie, err := h.movies.GetMovie(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (h *Handler) createMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	movie := req.toDomain(uuid.Nil)
	if err := h.movies.CreateMovie(r.Context(), movie); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (h *Handler) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req movieRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	movie := req.toDomain(id)
	if err := h.movies.UpdateMovie(r.Context(), movie); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (h *Handler) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.movies.DeleteMovies(r.Context(), []uuid.UUID{id}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteMovies(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.movies.DeleteMovies(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handler) setMovieTerms(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	kind, err := pathTermKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.movies.SetMovieTerms(r.Context(), id, kind, req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	movie, err := h.movies.GetMovie(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (h *Handler) listEpisodes(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	groups, err := h.episodes.ListEpisodes(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: toServerGroupResponses(groups)})
}

func (h *Handler) addEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.EpisodeInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	episode, err := h.episodes.AddEpisode(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEpisodeResponse(episode))
}

func (h *Handler) updateEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.EpisodeInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	episode, err := h.episodes.UpdateEpisode(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEpisodeResponse(episode))
}

func (h *Handler) deleteEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.episodes.DeleteEpisode(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTerms(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTermKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	terms, err := h.taxonomy.ListTerms(r.Context(), kind, r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]termResponse, len(terms))
	for i, t := range terms {
		items[i] = toTermResponse(t)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

func (h *Handler) createTerm(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTermKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req termRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	term, err := h.taxonomy.CreateTerm(r.Context(), kind, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTermResponse(term))
}

func (h *Handler) updateTerm(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTermKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req termRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	term, err := h.taxonomy.UpdateTerm(r.Context(), kind, id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTermResponse(term))
}

func (h *Handler) deleteTerm(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTermKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.taxonomy.DeleteTerms(r.Context(), kind, []uuid.UUID{id})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if n == 0 {
		h.writeError(w, r, domain.ErrTermNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteTerms(w http.ResponseWriter, r *http.Request) {
	kind, err := pathTermKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.taxonomy.DeleteTerms(r.Context(), kind, req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handler) listYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.taxonomy.ListYears(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]yearResponse, len(years))
	for i, y := range years {
		items[i] = yearResponse{ID: y.ID, Year: y.Year}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

func (h *Handler) addYear(w http.ResponseWriter, r *http.Request) {
	var req yearRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.taxonomy.AddYear(r.Context(), req.Year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, yearResponse{ID: id, Year: req.Year})
}

func (h *Handler) deleteYear(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.taxonomy.DeleteYears(r.Context(), []uuid.UUID{id}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteYears(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.taxonomy.DeleteYears(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (t termRequest) input() service.TermInput {
	in := service.TermInput{Name: t.Name, Slug: t.Slug}
	if t.SEO != nil {
		in.SEO = domain.SEO{Title: t.SEO.Title, Description: t.SEO.Description, Keyword: t.SEO.Keyword}
	}
	return in
}
