package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appincidents "github.com/bryanwahyu/incident-replay/internal/application/incidents"
	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	domain "github.com/bryanwahyu/incident-replay/internal/domain/incidents"
	"github.com/bryanwahyu/incident-replay/internal/middleware"
)

type Router struct {
	svc *appincidents.Service
}

func NewRouter(svc *appincidents.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/incidents", r.wrap(r.handleCreate))
		rt.Get("/incidents", r.wrap(r.handleList))
		rt.Get("/incidents/latest", r.wrap(r.handleLatest))
		rt.Get("/incidents/{id}", r.wrap(r.handleGet))
		rt.Post("/incidents/{id}/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, appincidents.ErrNotFound), errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, appincidents.ErrValidation):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, analysis.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/incidents
// Body: {"erp_reference": "INV-001", "incident_type": "PRICING_ISSUE", "description": "..."}
func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ERPReference string `json:"erp_reference"`
		IncidentType string `json:"incident_type"`
		Description  string `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", appincidents.ErrValidation, err)
	}

	if err := middleware.ValidateReference(body.ERPReference); err != nil {
		return fmt.Errorf("%w: %v", appincidents.ErrValidation, err)
	}
	if err := middleware.ValidateIncidentType(body.IncidentType); err != nil {
		return fmt.Errorf("%w: %v", appincidents.ErrValidation, err)
	}
	if err := middleware.ValidateDescription(body.Description); err != nil {
		return fmt.Errorf("%w: %v", appincidents.ErrValidation, err)
	}

	inc, err := r.svc.Create(req.Context(), appincidents.CreateIncidentCommand{
		ERPReference: body.ERPReference,
		Type:         body.IncidentType,
		Description:  body.Description,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(inc)
}

// GET /v1/incidents?page=&page_size=
// GET /v1/incidents?erp_reference=INV-001 looks up the single incident
// registered for that reference instead.
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	if ref := req.URL.Query().Get("erp_reference"); ref != "" {
		inc, err := r.svc.GetByReference(req.Context(), ref)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(inc)
	}

	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.List(req.Context(), page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/incidents/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/incidents/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	inc, err := r.svc.Get(req.Context(), domain.IncidentID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(inc)
}

// POST /v1/incidents/{id}/analyze
// Runs one full analysis pass synchronously and returns the result.
// Rerunning overwrites the previous result.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	res, err := r.svc.Analyze(req.Context(), domain.IncidentID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}
