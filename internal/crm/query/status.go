package query

import (
	"fmt"
	"strings"

	e "github.com/gartstein/crm/internal/crm/errors"
)

// Status selects records by their soft-delete state.
type Status string

const (
	// StatusActive selects records that are not in the trash.
	StatusActive  Status = "active"
	StatusTrashed Status = "trashed"
	StatusAll     Status = "all"
)

// ParseStatus converts a raw status filter. An empty value selects active
// records; any value outside active, trashed and all is rejected.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StatusActive, nil
	case StatusActive, StatusTrashed, StatusAll:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q, expected active, trashed or all", e.ErrInvalidInput, raw)
	}
}

func (s Status) String() string {
	return string(s)
}
