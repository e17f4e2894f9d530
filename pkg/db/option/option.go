// Package option holds composable gorm query modifiers.
package option

import (
	"strings"

	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// WithOrder appends an ORDER BY clause; column must be a trusted identifier.
func WithOrder(column string, desc bool) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		dir := "asc"
		if desc {
			dir = "desc"
		}
		return db.Order(strings.TrimSpace(column) + " " + dir)
	})
}

func WithLimit(limit int) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// ApplyPagination applies keyset pagination over (created_at, id) descending
// and fetches one extra row so callers can detect a next page. A malformed
// page token fails the query with pagination.ErrInvalidPageToken.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		size := NormalizePageSize(page.PageSize)
		if token := strings.TrimSpace(page.PageToken); token != "" {
			createdAt, id, err := pagination.ParseCursor(token)
			if err != nil {
				_ = db.AddError(err)
				return db
			}
			db = db.Where("(created_at < ?) OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
		}
		return db.Limit(size + 1)
	})
}

func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}
