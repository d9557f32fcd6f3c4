package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/emission"
)

// RESTHandler exposes the assessment and emission use cases over HTTP.
type RESTHandler struct {
	assessments *app.AssessmentService
	emissions   *app.EmissionService
	validate    *validator.Validate
	log         *zap.Logger
}

func NewRESTHandler(assessments *app.AssessmentService, emissions *app.EmissionService, log *zap.Logger) *RESTHandler {
	return &RESTHandler{
		assessments: assessments,
		emissions:   emissions,
		validate:    validator.New(),
		log:         log,
	}
}

// Register wires all routes onto the router.
func (h *RESTHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/assessments/{companyID}", h.submitAssessment).Methods(http.MethodPost)
	api.HandleFunc("/assessments/{companyID}/latest", h.latestResult).Methods(http.MethodGet)
	api.HandleFunc("/assessments/{companyID}/history", h.resultHistory).Methods(http.MethodGet)
	api.HandleFunc("/assessments/{companyID}/violations", h.violations).Methods(http.MethodGet)
	api.HandleFunc("/emissions/options", h.emissionOptions).Methods(http.MethodGet)
	api.HandleFunc("/emissions/resolve", h.resolveFactor).Methods(http.MethodPost)
	api.HandleFunc("/emissions/calculate", h.calculateEmission).Methods(http.MethodPost)
	api.HandleFunc("/emissions/{companyID}/records", h.emissionRecords).Methods(http.MethodGet)
}

type submitRequest struct {
	Answers map[string]any `json:"answers" validate:"required,min=1"`
}

func (h *RESTHandler) submitAssessment(w http.ResponseWriter, r *http.Request) {
	companyID := mux.Vars(r)["companyID"]

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Errorf(domain.KindValidation, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, domain.Errorf(domain.KindValidation, "answers are required"))
		return
	}

	result, err := h.assessments.Submit(r.Context(), companyID, req.Answers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *RESTHandler) latestResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.assessments.Latest(r.Context(), mux.Vars(r)["companyID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *RESTHandler) resultHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 10)
	results, err := h.assessments.History(r.Context(), mux.Vars(r)["companyID"], page, size)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *RESTHandler) violations(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.assessments.Violations(r.Context(), mux.Vars(r)["companyID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, grouped)
}

func (h *RESTHandler) emissionOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := emission.Selection{
		Category: q.Get("category"),
		Separate: q.Get("separate"),
	}
	opts, err := h.emissions.Options(r.Context(), q.Get("scope"), sel)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, opts)
}

type resolveRequest struct {
	Scope       string `json:"scope" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Separate    string `json:"separate" validate:"required"`
	RawMaterial string `json:"rawMaterial" validate:"required"`
}

func (h *RESTHandler) resolveFactor(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Errorf(domain.KindValidation, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, domain.Errorf(domain.KindValidation, "scope, category, separate and rawMaterial are required"))
		return
	}

	entry, err := h.emissions.Resolve(r.Context(), req.Scope, emission.Selection{
		Category:    req.Category,
		Separate:    req.Separate,
		RawMaterial: req.RawMaterial,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

type calculateRequest struct {
	CompanyID      string `json:"companyId" validate:"required"`
	Scope          string `json:"scope" validate:"required"`
	Category       string `json:"category" validate:"required"`
	Separate       string `json:"separate" validate:"required"`
	RawMaterial    string `json:"rawMaterial" validate:"required"`
	ActivityAmount string `json:"activityAmount" validate:"required"`
}

func (h *RESTHandler) calculateEmission(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.Errorf(domain.KindValidation, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, domain.Errorf(domain.KindValidation, "missing required fields"))
		return
	}

	record, err := h.emissions.Calculate(r.Context(), app.CalcInput{
		CompanyID: req.CompanyID,
		Scope:     req.Scope,
		Selection: emission.Selection{
			Category:    req.Category,
			Separate:    req.Separate,
			RawMaterial: req.RawMaterial,
		},
		ActivityAmount: req.ActivityAmount,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func (h *RESTHandler) emissionRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.emissions.Records(r.Context(), mux.Vars(r)["companyID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

type errorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func (h *RESTHandler) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch {
	case kind == domain.KindType, kind == domain.KindInvalidValue, kind == domain.KindValidation:
		status = http.StatusBadRequest
	case kind == domain.KindNotFound:
		status = http.StatusNotFound
	case kind == domain.KindEmptyResult:
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrResultNotFound), errors.Is(err, domain.ErrCatalogNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	kindStr := ""
	if kind != 0 {
		kindStr = kind.String()
	}
	h.writeJSON(w, status, errorResponse{Message: err.Error(), Kind: kindStr})
}

func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("write response", zap.Error(err))
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}
