// Package numeric stores exact decimals in columns every supported dialect
// reads back unchanged.
package numeric

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Column layout for postgres and mysql. sqlite keeps the decimal string as
// TEXT, since NUMERIC affinity would coerce it to a float.
const (
	Precision = 38
	Scale     = 18
)

var maxMagnitude = decimal.New(1, Precision-Scale)

// Decimal is a decimal.Decimal with a dialect-aware column type.
type Decimal struct {
	decimal.Decimal
}

// New wraps d for persistence.
func New(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

// GormDBDataType picks the column type used by migrations.
func (Decimal) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return fmt.Sprintf("numeric(%d,%d)", Precision, Scale)
}

// Fits reports whether d is stored without rounding or overflow.
func Fits(d decimal.Decimal) bool {
	if !d.Equal(d.Truncate(Scale)) {
		return false
	}
	return d.Abs().LessThan(maxMagnitude)
}

// ScaleAtMost reports whether d has no more than places significant
// fractional digits.
func ScaleAtMost(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
