// Package query builds filtered, paginated list queries over companies and
// contacts: it validates list parameters, turns them into gorm scopes and
// computes the page metadata returned with the items.
package query

import (
	"fmt"
	"strings"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size used when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit is the largest limit a list query accepts.
	MaxLimit = 100
)

// Config holds the pagination settings of a Builder.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Params holds the raw list inputs received from the transport layer.
// Nil pointers mean "not provided".
type Params struct {
	Skip      *int
	Limit     *int
	Search    string
	Status    string
	CompanyID *uuid.UUID
}

// Query is a validated list query.
type Query struct {
	Skip   int
	Limit  int
	Search string
	Status Status
	// CompanyID scopes contact queries to one company. Ignored for companies.
	CompanyID *uuid.UUID
}

// Builder validates Params against its pagination settings.
type Builder struct {
	defaultLimit int
	maxLimit     int
}

// NewBuilder returns a Builder, falling back to DefaultLimit and MaxLimit
// for unset values.
func NewBuilder(cfg Config) *Builder {
	b := &Builder{defaultLimit: cfg.DefaultLimit, maxLimit: cfg.MaxLimit}
	if b.defaultLimit <= 0 {
		b.defaultLimit = DefaultLimit
	}
	if b.maxLimit <= 0 {
		b.maxLimit = MaxLimit
	}
	if b.defaultLimit > b.maxLimit {
		b.defaultLimit = b.maxLimit
	}
	return b
}

// Build validates the parameters and fills in defaults.
// A limit outside 1..max and a negative skip are rejected, so page counts
// always use the limit the caller asked for.
func (b *Builder) Build(p Params) (Query, error) {
	q := Query{
		Limit:  b.defaultLimit,
		Search: strings.TrimSpace(p.Search),
	}

	if p.Skip != nil {
		if *p.Skip < 0 {
			return Query{}, fmt.Errorf("%w: skip must not be negative", e.ErrInvalidInput)
		}
		q.Skip = *p.Skip
	}
	if p.Limit != nil {
		if *p.Limit <= 0 {
			return Query{}, fmt.Errorf("%w: limit must be greater than zero", e.ErrInvalidInput)
		}
		if *p.Limit > b.maxLimit {
			return Query{}, fmt.Errorf("%w: limit must not exceed %d", e.ErrInvalidInput, b.maxLimit)
		}
		q.Limit = *p.Limit
	}

	status, err := ParseStatus(p.Status)
	if err != nil {
		return Query{}, err
	}
	q.Status = status

	if p.CompanyID != nil && *p.CompanyID != uuid.Nil {
		id := *p.CompanyID
		q.CompanyID = &id
	}
	return q, nil
}

// WithCompany returns a copy of q scoped to the given company.
func (q Query) WithCompany(id uuid.UUID) Query {
	q.CompanyID = &id
	return q
}
