package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/resolver"
	"github.com/niio972/phis-ws/internal/search"
	"github.com/niio972/phis-ws/internal/service"
	"github.com/niio972/phis-ws/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Handler serves the REST API.
type Handler struct {
	infrastructures *service.InfrastructureService
	experiments     *service.ExperimentService
	data            *service.DataService
	log             zerolog.Logger
	pageSize        int
}

// New creates the API handler.
func New(infra *service.InfrastructureService, exps *service.ExperimentService, data *service.DataService, log zerolog.Logger) *Handler {
	return &Handler{
		infrastructures: infra,
		experiments:     exps,
		data:            data,
		log:             log,
		pageSize:        page.DefaultPageSize,
	}
}

// SetDefaultPageSize changes the page size used when a request gives
// none. Values below one are ignored.
func (h *Handler) SetDefaultPageSize(n int) {
	if n > 0 {
		h.pageSize = n
	}
}

// Routes returns the complete HTTP handler: API routes, /metrics served
// from gatherer, and the middleware chain.
func (h *Handler) Routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /infrastructures", h.SearchInfrastructures)
	mux.HandleFunc("POST /infrastructures", h.mutateInfrastructures(h.infrastructures.Create))
	mux.HandleFunc("PUT /infrastructures", h.mutateInfrastructures(h.infrastructures.Update))
	mux.HandleFunc("DELETE /infrastructures", h.mutateInfrastructures(h.infrastructures.Delete))
	mux.HandleFunc("GET /infrastructures/{uri}", h.GetInfrastructure)

	mux.HandleFunc("GET /experiments", h.SearchExperiments)
	mux.HandleFunc("POST /experiments", h.CreateExperiments)
	mux.HandleFunc("PUT /experiments", h.UpdateExperiments)
	mux.HandleFunc("GET /experiments/{uri}", h.GetExperiment)
	mux.HandleFunc("PUT /experiments/{uri}/variables", h.LinkVariables)
	mux.HandleFunc("PUT /experiments/{uri}/sensors", h.LinkSensors)
	mux.HandleFunc("GET /experiments/{uri}/data", h.SearchData)

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return Chain(mux,
		Recover(h.log),
		Logger(h.log),
	)
}

// SearchInfrastructures handles GET /infrastructures.
func (h *Handler) SearchInfrastructures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, err := pageParams(q, h.pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := search.NewCriteria(
		search.WithURI(q.Get("uri")),
		search.WithType(q.Get("rdfType")),
		search.WithLabel(q.Get("label")),
		search.WithLanguage(q.Get("language")),
		search.WithParent(q.Get("parent")),
		search.WithPage(pg.Page, pg.PageSize),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.infrastructures.Search(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writePage(w, res)
}

// mutateInfrastructures handles POST, PUT and DELETE /infrastructures.
// The body is decoded before fn runs.
func (h *Handler) mutateInfrastructures(fn func(context.Context, []search.Infrastructure) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var infs []search.Infrastructure
		if err := decodeBody(w, r, &infs); err != nil {
			writeError(w, err)
			return
		}
		if err := fn(r.Context(), infs); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, "Infrastructure(s) changed")
	}
}

// GetInfrastructure handles GET /infrastructures/{uri}.
func (h *Handler) GetInfrastructure(w http.ResponseWriter, r *http.Request) {
	uri, err := pathIRI(r, "uri")
	if err != nil {
		writeError(w, err)
		return
	}

	inf, err := h.infrastructures.Get(r.Context(), uri)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, []search.Infrastructure{inf}, http.StatusOK)
}

// SearchExperiments handles GET /experiments.
func (h *Handler) SearchExperiments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, err := pageParams(q, h.pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.experiments.Search(r.Context(), store.ExperimentCriteria{
		URI:        q.Get("uri"),
		ProjectURI: q.Get("projectUri"),
		StartDate:  q.Get("startDate"),
		EndDate:    q.Get("endDate"),
		Field:      q.Get("field"),
		Campaign:   q.Get("campaign"),
		Place:      q.Get("place"),
		Alias:      q.Get("alias"),
		Keywords:   q.Get("keywords"),
		Page:       pg,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writePage(w, res)
}

// GetExperiment handles GET /experiments/{uri}.
func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	uri, err := pathIRI(r, "uri")
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := h.experiments.Get(r.Context(), uri)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, []store.Experiment{e}, http.StatusOK)
}

// CreateExperiments handles POST /experiments with a JSON array body.
func (h *Handler) CreateExperiments(w http.ResponseWriter, r *http.Request) {
	var exps []store.Experiment
	if err := decodeBody(w, r, &exps); err != nil {
		writeError(w, err)
		return
	}

	uris, err := h.experiments.Create(r.Context(), exps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, uris, "Experiment(s) created")
}

// UpdateExperiments handles PUT /experiments with a JSON array body.
func (h *Handler) UpdateExperiments(w http.ResponseWriter, r *http.Request) {
	var exps []store.Experiment
	if err := decodeBody(w, r, &exps); err != nil {
		writeError(w, err)
		return
	}

	if err := h.experiments.Update(r.Context(), exps); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "Experiment(s) updated")
}

// LinkVariables handles PUT /experiments/{uri}/variables.
func (h *Handler) LinkVariables(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, "Variables linked", h.experiments.LinkVariables)
}

// LinkSensors handles PUT /experiments/{uri}/sensors.
func (h *Handler) LinkSensors(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, "Sensors linked", h.experiments.LinkSensors)
}

type linkFunc func(ctx context.Context, uri string, targets []string) error

func (h *Handler) link(w http.ResponseWriter, r *http.Request, message string, fn linkFunc) {
	uri, err := pathIRI(r, "uri")
	if err != nil {
		writeError(w, err)
		return
	}

	var targets []string
	if err := decodeBody(w, r, &targets); err != nil {
		writeError(w, err)
		return
	}

	if err := fn(r.Context(), uri, targets); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, message)
}

// SearchData handles GET /experiments/{uri}/data.
func (h *Handler) SearchData(w http.ResponseWriter, r *http.Request) {
	uri, err := pathIRI(r, "uri")
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	pg, err := pageParams(q, h.pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	asc, err := boolParam(q, "dateSortAsc")
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.data.Search(r.Context(), resolver.DataQuery{
		Experiment:      uri,
		Variable:        q.Get("variableUri"),
		StartDate:       q.Get("startDate"),
		EndDate:         q.Get("endDate"),
		ObjectURI:       q.Get("objectUri"),
		ObjectLabel:     q.Get("objectLabel"),
		ProvenanceURI:   q.Get("provenanceUri"),
		ProvenanceLabel: q.Get("provenanceLabel"),
		DateSortAsc:     asc,
		Page:            pg,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writePage(w, res)
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("body", "invalid JSON body: %v", err)
	}
	return nil
}
