package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is a reusable gorm query modifier.
type Scope = func(*gorm.DB) *gorm.DB

const (
	deletedAtColumn = "deleted_at"
	orderColumn     = "id"
	dialectPostgres = "postgres"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// StatusScope filters on deleted_at according to the status.
func StatusScope(status Status) Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case StatusActive:
			return db.Where(deletedAtColumn + " IS NULL")
		case StatusTrashed:
			return db.Where(deletedAtColumn + " IS NOT NULL")
		default:
			return db
		}
	}
}

// SearchScope matches records where any of the columns contains term,
// ignoring case. The term is matched literally. An empty term is a no-op.
// Postgres compares with ILIKE; other dialects compare LOWER(column), which
// in sqlite folds ASCII letters only.
func SearchScope(term string, columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}

		cond := "LOWER(%s) LIKE ? ESCAPE '\\'"
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		if db.Dialector != nil && db.Dialector.Name() == dialectPostgres {
			cond = "%s ILIKE ? ESCAPE '\\'"
			pattern = "%" + likeEscaper.Replace(term) + "%"
		}

		conds := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			conds = append(conds, fmt.Sprintf(cond, col))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// EqualsScope filters column on the id when it is set.
func EqualsScope(column string, id *uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if id == nil || *id == uuid.Nil {
			return db
		}
		return db.Where(column+" = ?", *id)
	}
}

// PageScope orders by id and applies the pagination window.
func PageScope(q Query) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(orderColumn + " ASC").Offset(q.Skip).Limit(q.Limit)
	}
}

// Filters returns the status and search scopes of q. Callers append their
// own entity-specific scopes.
func (q Query) Filters(searchColumns ...string) []Scope {
	return []Scope{
		StatusScope(q.Status),
		SearchScope(q.Search, searchColumns...),
	}
}
