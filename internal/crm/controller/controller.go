// Package controller implements the core business logic (service layer)
// for managing companies and contacts: validation, the soft-delete
// lifecycle, list queries and change events.
package controller

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/metrics"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/go-playground/validator/v10"
)

type EventProducer interface {
	Produce(event events.Event)
}

const (
	entityCompany = "company"
	entityContact = "contact"

	opCreate     = "create"
	opGet        = "get"
	opUpdate     = "update"
	opSoftDelete = "soft_delete"
	opRestore    = "restore"
	opHardDelete = "hard_delete"
	opList       = "list"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// validateStruct runs the struct's validate tags and reports every failing
// field in one ErrInvalidInput.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		msgs = append(msgs, fieldErr.Field()+" "+validationMessage(fieldErr))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", e.ErrInvalidInput, strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// observer records store metrics for one entity.
type observer struct {
	entity  string
	metrics *metrics.StoreMetrics
}

// observe is meant to be deferred with a pointer to the named error result.
func (o observer) observe(operation string, start time.Time, errp *error) {
	o.metrics.Observe(o.entity, operation, start, *errp)
}

// observeResult is observe for operations that may end as a no-op.
func (o observer) observeResult(operation string, start time.Time, res *models.StatusResult, errp *error) {
	if *errp == nil && !res.Changed() {
		o.metrics.ObserveOutcome(o.entity, operation, start, metrics.OutcomeNoop)
		return
	}
	o.metrics.Observe(o.entity, operation, start, *errp)
}
