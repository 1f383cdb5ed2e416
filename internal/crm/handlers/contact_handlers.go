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

const contactEntity = "Contact"

type ContactController interface {
	CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	UpdateContact(ctx context.Context, update *models.ContactUpdate) (*models.Contact, error)
	SoftDeleteContact(ctx context.Context, id uuid.UUID) (models.StatusResult, error)
	TrashContact(ctx context.Context, id uuid.UUID) (models.StatusResult, error)
	RestoreContact(ctx context.Context, id uuid.UUID) (models.StatusResult, error)
	DeleteContact(ctx context.Context, id uuid.UUID) (models.StatusResult, error)
	ListContacts(ctx context.Context, params query.Params) (query.Page[*models.Contact], error)
	ListCompanyContacts(ctx context.Context, companyID uuid.UUID, params query.Params) (query.Page[*models.Contact], error)
}

// ContactHandler serves the /contacts routes and the contacts of a company.
type ContactHandler struct {
	service ContactController
	mux     *runtime.ServeMux
	logger  *zap.Logger
}

func NewContactHandler(service ContactController, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger.Named("contact_handler"),
	}
}

func (h *ContactHandler) Register(mux *runtime.ServeMux) error {
	h.mux = mux
	routes := []struct {
		method string
		path   string
		fn     runtime.HandlerFunc
	}{
		{http.MethodGet, "/contacts", h.ListContacts},
		{http.MethodPost, "/contacts", h.CreateContact},
		{http.MethodGet, "/contacts/{id}", h.GetContact},
		{http.MethodPut, "/contacts/{id}", h.UpdateContact},
		{http.MethodPatch, "/contacts/{id}", h.UpdateContact},
		{http.MethodDelete, "/contacts/{id}", h.TrashContact},
		{http.MethodDelete, "/contacts/{id}/permanent", h.DeleteContact},
		{http.MethodPatch, "/contacts/{id}/soft-delete", h.SoftDeleteContact},
		{http.MethodPatch, "/contacts/{id}/restore", h.RestoreContact},
		{http.MethodPost, "/contacts/{id}/restore", h.RestoreContact},
		{http.MethodGet, "/companies/{id}/contacts", h.ListCompanyContacts},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.path, rt.fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *ContactHandler) fail(w http.ResponseWriter, r *http.Request, entity string, err error) {
	writeError(w, r, h.mux, mapServiceError(h.logger, entity, err))
}

// ListContacts returns one page of contacts, optionally filtered by companyId.
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	params, err := parseListParams(r)
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	page, err := h.service.ListContacts(r.Context(), params)
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, toPageResponse(page))
}

// ListCompanyContacts returns the contacts of the company in the path.
func (h *ContactHandler) ListCompanyContacts(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	companyID, err := parseID(pathParams, companyEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	params, err := parseListParams(r)
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	page, err := h.service.ListCompanyContacts(r.Context(), companyID, params)
	if err != nil {
		h.fail(w, r, companyEntity, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, toPageResponse(page))
}

func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req contactRequest
	if err := decodeBody(r, h.mux, &req); err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	created, err := h.service.CreateContact(r.Context(), req.toModel())
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusCreated, created)
}

func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, contactEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	contact, err := h.service.GetContact(r.Context(), id)
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, contact)
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams, contactEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	var req contactRequest
	if err := decodeBody(r, h.mux, &req); err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	updated, err := h.service.UpdateContact(r.Context(), req.toUpdate(id))
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, updated)
}

func (h *ContactHandler) SoftDeleteContact(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	h.statusAction(w, r, pathParams, h.service.SoftDeleteContact)
}

func (h *ContactHandler) RestoreContact(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	h.statusAction(w, r, pathParams, h.service.RestoreContact)
}

// TrashContact serves DELETE /contacts/{id}, which soft-deletes even a
// contact already in the trash.
func (h *ContactHandler) TrashContact(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	h.statusAction(w, r, pathParams, h.service.TrashContact)
}

// DeleteContact permanently removes a contact.
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	h.statusAction(w, r, pathParams, h.service.DeleteContact)
}

func (h *ContactHandler) statusAction(
	w http.ResponseWriter,
	r *http.Request,
	pathParams map[string]string,
	action func(context.Context, uuid.UUID) (models.StatusResult, error),
) {
	id, err := parseID(pathParams, contactEntity)
	if err != nil {
		writeError(w, r, h.mux, err)
		return
	}
	res, err := action(r.Context(), id)
	if err != nil {
		h.fail(w, r, contactEntity, err)
		return
	}
	writeJSON(w, r, h.mux, http.StatusOK, res)
}
