package repository

import (
	"context"

	"github.com/smallbiznis/gstbill/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic org-agnostic gorm store. Callers scope queries by
// setting OrgID on the filter value.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID any, resource any) error
	Count(ctx context.Context, query *T) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
}
