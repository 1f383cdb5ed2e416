package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// companyRequest is the JSON body of company create and update calls.
// Absent fields stay nil so updates only touch what was sent.
type companyRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Region     *string `json:"region"`
	Country    *string `json:"country"`
	PostalCode *string `json:"postalCode"`
}

func (r *companyRequest) toModel() *models.Company {
	return &models.Company{
		Name:       utils.Deref(r.Name),
		Email:      utils.Deref(r.Email),
		Phone:      utils.Deref(r.Phone),
		Address:    utils.Deref(r.Address),
		City:       utils.Deref(r.City),
		Region:     utils.Deref(r.Region),
		Country:    utils.Deref(r.Country),
		PostalCode: utils.Deref(r.PostalCode),
	}
}

func (r *companyRequest) toUpdate(id uuid.UUID) *models.CompanyUpdate {
	return &models.CompanyUpdate{
		ID:         id,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		Region:     r.Region,
		Country:    r.Country,
		PostalCode: r.PostalCode,
	}
}

// contactRequest is the JSON body of contact create and update calls.
type contactRequest struct {
	FirstName  *string      `json:"firstName"`
	LastName   *string      `json:"lastName"`
	Email      *string      `json:"email"`
	Phone      *string      `json:"phone"`
	Address    *string      `json:"address"`
	City       *string      `json:"city"`
	Region     *string      `json:"region"`
	Country    *string      `json:"country"`
	PostalCode *string      `json:"postalCode"`
	CompanyID  optionalUUID `json:"companyId"`
}

func (r *contactRequest) toModel() *models.Contact {
	return &models.Contact{
		FirstName:  utils.Deref(r.FirstName),
		LastName:   utils.Deref(r.LastName),
		Email:      utils.Deref(r.Email),
		Phone:      utils.Deref(r.Phone),
		Address:    utils.Deref(r.Address),
		City:       utils.Deref(r.City),
		Region:     utils.Deref(r.Region),
		Country:    utils.Deref(r.Country),
		PostalCode: utils.Deref(r.PostalCode),
		CompanyID:  r.CompanyID.Value,
	}
}

// toUpdate maps an explicit null companyId to uuid.Nil, which detaches
// the contact.
func (r *contactRequest) toUpdate(id uuid.UUID) *models.ContactUpdate {
	update := &models.ContactUpdate{
		ID:         id,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		Region:     r.Region,
		Country:    r.Country,
		PostalCode: r.PostalCode,
	}
	if r.CompanyID.Set {
		update.CompanyID = utils.Ptr(uuid.Nil)
		if r.CompanyID.Value != nil {
			update.CompanyID = r.CompanyID.Value
		}
	}
	return update
}

// optionalUUID tells an absent JSON field apart from an explicit null.
type optionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *optionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("companyId must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("companyId: %w", err)
	}
	o.Value = &id
	return nil
}

// pageResponse is the JSON shape of list results.
type pageResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

func toPageResponse[T any](p query.Page[T]) pageResponse[T] {
	return pageResponse[T]{Items: p.Items, Total: p.Total, Page: p.Page, Pages: p.Pages}
}

// parseListParams reads skip, limit, search, status and companyId from the
// query string. Range checks are left to the query builder.
func parseListParams(r *http.Request) (query.Params, error) {
	values := r.URL.Query()
	params := query.Params{
		Search: values.Get("search"),
		Status: values.Get("status"),
	}

	for key, dst := range map[string]**int{"skip": &params.Skip, "limit": &params.Limit} {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.Params{}, fmt.Errorf("%w: %s must be an integer", e.ErrInvalidInput, key)
		}
		*dst = &n
	}

	if raw := strings.TrimSpace(values.Get("companyId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query.Params{}, fmt.Errorf("%w: companyId must be a UUID", e.ErrInvalidInput)
		}
		params.CompanyID = &id
	}
	return params, nil
}

func parseID(pathParams map[string]string, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(pathParams["id"])
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s ID", strings.ToLower(entity))
	}
	return id, nil
}

// mapServiceError maps domain or repository errors to appropriate gRPC
// status codes. The gateway renders them with the matching HTTP status.
func mapServiceError(logger *zap.Logger, entity string, err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s not found", entity)
	case errors.Is(err, e.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

func unavailable(msg string) error {
	return status.Error(codes.Unavailable, msg)
}

func writeJSON(w http.ResponseWriter, r *http.Request, mux *runtime.ServeMux, code int, v interface{}) {
	_, outbound := runtime.MarshalerForRequest(mux, r)
	buf, err := outbound.Marshal(v)
	if err != nil {
		writeError(w, r, mux, status.Error(codes.Internal, "failed to encode response"))
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(v))
	w.WriteHeader(code)
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, r *http.Request, mux *runtime.ServeMux, err error) {
	_, outbound := runtime.MarshalerForRequest(mux, r)
	runtime.HTTPError(r.Context(), mux, outbound, w, r, err)
}

func decodeBody(r *http.Request, mux *runtime.ServeMux, dest interface{}) error {
	inbound, _ := runtime.MarshalerForRequest(mux, r)
	if err := inbound.NewDecoder(r.Body).Decode(dest); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	return nil
}
