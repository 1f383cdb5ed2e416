package handlers

import (
	"context"
	"net/http"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const companyEntity = "Company"

// CompanyController defines the business logic interface
// that the HTTP handlers will invoke.
type CompanyController interface {
	CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error)
	SoftDeleteCompany(ctx context.Context, id uuid.UUID) (models.StatusResult, error)
	RestoreCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) (models.StatusResult, error)
	ListCompanies(ctx context.Context, params query.Params) (query.Page[*models.Company], error)
}

// CompanyHandler serves the /companies routes.
type CompanyHandler struct {
	service CompanyController
	mux     *runtime.ServeMux
	logger  *zap.Logger
}

// NewCompanyHandler constructs a new CompanyHandler with the given service and logger.
func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("company_handler"),
	}
}

// Register mounts the company routes on mux.
func (h *CompanyHandler) Register(mux *runtime.ServeMux) error {
	h.mux = mux
	routes := []struct {
		method string
		path   string
		fn     runtime.HandlerFunc
	}{
		{http.MethodGet, "/companies", h.ListCompanies},
		{http.MethodPost, "/companies", h.CreateCompany},
		{http.MethodGet, "/companies/{id}", h.GetCompany},
		{http.MethodPut, "/companies/{id}", h.UpdateCompany},
		{http.MethodPatch, "/companies/{id}", h.UpdateCompany},
		{http.MethodDelete, "/companies/{id}", h.DeleteCompany},
		{http.MethodPatch, "/companies/{id}/soft-delete", h.SoftDeleteCompany},
		{http.MethodPatch, "/companies/{id}/restore", h.RestoreCompany},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.path, rt.fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *CompanyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.mux, mapServiceError(h.logger, companyEntity, err))
}

// ListCompanies returns one page of companies.
func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	params, err := parseListParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.service.ListCompanies(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, toPageResponse(page))
}

// CreateCompany processes a company body, creating a new Company in the system.
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req companyRequest
	if err := decodeBody(r, h.mux, &req); err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	created, err := h.service.CreateCompany(r.Context(), req.toModel())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusCreated, created)
}

// GetCompany fetches a Company by ID, returning 404 if not found.
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, companyEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, company)
}

// UpdateCompany applies the fields present in the body.
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, companyEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	var req companyRequest
	if err := decodeBody(r, h.mux, &req); err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	updated, err := h.service.UpdateCompany(r.Context(), req.toUpdate(id))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, updated)
}

func (h *CompanyHandler) SoftDeleteCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	h.statusAction(w, r, pathParams, h.service.SoftDeleteCompany)
}

// DeleteCompany permanently removes a Company given its ID.
func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	h.statusAction(w, r, pathParams, h.service.DeleteCompany)
}

func (h *CompanyHandler) RestoreCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, companyEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	company, err := h.service.RestoreCompany(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, company)
}

func (h *CompanyHandler) statusAction(
	w http.ResponseWriter,
	r *http.Request,
	pathParams map[string]string,
	action func(context.Context, uuid.UUID) (models.StatusResult, error),
) {
	id, err := parseID(pathParams, companyEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	res, err := action(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, res)
}
