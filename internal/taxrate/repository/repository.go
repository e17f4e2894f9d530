package repository

import (
	"github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"github.com/smallbiznis/gstbill/pkg/repository"
	"gorm.io/gorm"
)

func NewRepository(db *gorm.DB) repository.Repository[domain.TaxRate] {
	return repository.ProvideStore[domain.TaxRate](db)
}
