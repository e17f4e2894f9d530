package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *CompanyProfile) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*CompanyProfile, error)
	FindDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*CompanyProfile, error)
	FindFirst(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*CompanyProfile, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*CompanyProfile, error)
	Update(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, fields map[string]any) error
	ClearDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error
}
