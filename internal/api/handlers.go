package api

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/models"
)

// maxImportBytes bounds CSV uploads.
const maxImportBytes = 32 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// systemName extracts the {name} URL parameter. Names contain spaces and
// occasionally slashes, so encoded values are accepted.
func systemName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListSystems handles GET /api/systems.
//
//	@Summary		List star systems with optional filters
//	@Tags			systems
//	@Produce		json
//	@Param			distance		query		number	false	"Maximum distance in light-years"
//	@Param			spectral_type	query		string	false	"Comma-separated spectral classes (G,K)"
//	@Param			has_planets		query		bool	false	"Only systems with (true) or without (false) planets"
//	@Param			min_planets		query		int		false	"Minimum planet count"
//	@Param			name			query		string	false	"Case-insensitive name substring"
//	@Param			limit			query		int		false	"Maximum number of results"
//	@Success		200				{array}		SystemRecord
//	@Failure		400				{object}	errResponse
//	@Router			/systems [get]
func (h *Handler) ListSystems(w http.ResponseWriter, r *http.Request) {
	q, err := parseSystemsQuery(r.URL.Query())
	if err != nil {
		writeError(w, "list systems", err)
		return
	}
	systems, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeError(w, "list systems", err)
		return
	}
	writeJSON(w, http.StatusOK, models.Records(systems))
}

// GetSystem handles GET /api/systems/{name}.
//
//	@Summary		Get a single star system by exact name
//	@Tags			systems
//	@Produce		json
//	@Param			name	path		string	true	"System name"
//	@Success		200		{object}	SystemRecord
//	@Failure		404		{object}	errResponse
//	@Router			/systems/{name} [get]
func (h *Handler) GetSystem(w http.ResponseWriter, r *http.Request) {
	name := systemName(r)
	sys, err := h.svc.Get(r.Context(), name)
	if err != nil {
		writeError(w, "get system "+name, err)
		return
	}
	writeJSON(w, http.StatusOK, sys.Record())
}

// Stats handles GET /api/stats.
//
//	@Summary		Catalog statistics
//	@Tags			systems
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Planets handles GET /api/planets.
//
//	@Summary		Search planets across the catalog
//	@Tags			planets
//	@Produce		json
//	@Param			type		query		string	false	"Classification"	Enums(Dwarf Planet, Terrestrial, Super-Earth, Gas Giant)
//	@Param			min_mass	query		number	false	"Minimum mass in Earth masses (exclusive)"
//	@Success		200			{array}		PlanetResult
//	@Failure		400			{object}	errResponse
//	@Router			/planets [get]
func (h *Handler) Planets(w http.ResponseWriter, r *http.Request) {
	q, err := parsePlanetsQuery(r.URL.Query())
	if err != nil {
		writeError(w, "planets", err)
		return
	}
	matches, err := h.svc.Planets(r.Context(), q)
	if err != nil {
		writeError(w, "planets", err)
		return
	}
	writeJSON(w, http.StatusOK, planetResults(matches))
}

// SyncStatus handles GET /api/sync/status.
//
//	@Summary		Status of the latest archive sync
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncStatusResponse
//	@Router			/sync/status [get]
func (h *Handler) SyncStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.SyncStatus())
}

// Export handles GET /api/export.
//
//	@Summary		Download the catalog as CSV
//	@Tags			systems
//	@Produce		text/csv
//	@Success		200
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.svc.Export(r.Context(), &buf); err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="star_systems.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// StartSync handles POST /api/admin/sync.
//
//	@Summary		Start an archive sync in the background
//	@Tags			admin
//	@Produce		json
//	@Success		202	{object}	SyncStatusResponse
//	@Failure		401	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		AdminKey
//	@Router			/admin/sync [post]
func (h *Handler) StartSync(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.StartSync(r.Context())
	if err != nil {
		writeError(w, "start sync", err)
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}

// Import handles POST /api/admin/import.
//
//	@Summary		Import systems from CSV
//	@Tags			admin
//	@Accept			text/csv
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	false	"CSV file (multipart uploads)"
//	@Success		200		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Security		AdminKey
//	@Router			/admin/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("missing file field"))
			return
		}
		defer file.Close()
		src = file
	}

	res, err := h.svc.Import(r.Context(), src)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Saved: res.Saved, Failed: res.Failed})
}

// Purge handles DELETE /api/admin/systems.
//
//	@Summary		Delete every system and planet
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	PurgeResponse
//	@Security		AdminKey
//	@Router			/admin/systems [delete]
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count(r.Context())
	if err != nil {
		writeError(w, "purge", err)
		return
	}
	if err := h.svc.Purge(r.Context()); err != nil {
		writeError(w, "purge", err)
		return
	}
	writeJSON(w, http.StatusOK, PurgeResponse{Deleted: n})
}
