package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oscarsr96/fbm-optimizer/internal/config"
	"github.com/oscarsr96/fbm-optimizer/internal/domain"
	"github.com/oscarsr96/fbm-optimizer/internal/engine"
	"github.com/oscarsr96/fbm-optimizer/internal/middleware"
)

// Handlers holds the HTTP handlers for the solver façade.
type Handlers struct {
	config *config.Config
}

// NewHandlers creates a new handlers instance.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{config: cfg}
}

// SetupRoutes registers every route and its middleware chain.
func (h *Handlers) SetupRoutes(mw *middleware.Middleware) http.Handler {
	router := mux.NewRouter()

	router.Use(mw.Logging)
	router.Use(mw.CORS)
	router.Use(mw.RateLimit)
	router.Use(mw.MaxBody)

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/solve", h.Solve).Methods(http.MethodPost)

	return router
}

// HealthCheck reports service liveness. It has no dependencies to probe —
// the engine is a pure in-process function, not a connection to keep
// alive — so a 200 response is the whole check.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "fbm-optimizer"})
}

// Solve decodes a SolveRequest, fills in parameter defaults from config,
// runs the engine, and returns the SolveResponse. The request carries its
// entire working set (matches, persons, distances) — there is no
// persisted state to look up.
func (h *Handlers) Solve(w http.ResponseWriter, r *http.Request) {
	var req domain.SolveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	req.Parameters = mergeParameters(req.Parameters, h.config.DefaultParameters())

	resp := engine.Solve(req)
	writeJSON(w, http.StatusOK, resp)
}

// mergeParameters fills zero-valued fields in req with the service's
// configured defaults, so a client can submit a partial parameters
// object (or none at all) and still get a fully specified solve. An
// all-zero parameters object is replaced by the defaults as a whole;
// otherwise ForceExisting is taken as sent.
func mergeParameters(req, defaults domain.SolverParameters) domain.SolverParameters {
	if req == (domain.SolverParameters{}) {
		return defaults
	}
	if req.CostWeight == 0 && req.BalanceWeight == 0 {
		req.CostWeight = defaults.CostWeight
		req.BalanceWeight = defaults.BalanceWeight
	}
	if req.MaxMatchesPerPerson <= 0 {
		req.MaxMatchesPerPerson = defaults.MaxMatchesPerPerson
	}
	if req.MaxTimeSeconds <= 0 {
		req.MaxTimeSeconds = defaults.MaxTimeSeconds
	}
	if req.SolverType == "" {
		req.SolverType = defaults.SolverType
	}
	return req
}

func validateRequest(req domain.SolveRequest) error {
	if len(req.Matches) == 0 {
		return errors.New("matches must not be empty")
	}
	ids := make(map[string]bool, len(req.Persons))
	for _, p := range req.Persons {
		if p.ID == "" {
			return errors.New("person id must not be empty")
		}
		if ids[p.ID] {
			return errors.New("duplicate person id: " + p.ID)
		}
		ids[p.ID] = true
	}
	for _, m := range req.Matches {
		if m.ID == "" {
			return errors.New("match id must not be empty")
		}
		if m.RefereesNeeded < 0 || m.ScorersNeeded < 0 {
			return errors.New("match " + m.ID + ": negative slot count")
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
