package persistence

import (
	"strings"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list endpoint may order by
type sortColumns map[string]bool

var transferSortColumns = sortColumns{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_date": true,
	"ref_no":           true,
	"final_total":      true,
	"status":           true,
}

var stockSortColumns = sortColumns{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"variation_id": true,
	"location_id":  true,
	"quantity":     true,
}

func (c sortColumns) resolve(field, fallback string) string {
	field = strings.TrimSpace(field)
	if c[field] {
		return field
	}
	return fallback
}

// sortDesc is true unless dir is "asc" in any case
func sortDesc(dir string) bool {
	return !strings.EqualFold(strings.TrimSpace(dir), "asc")
}

// pageAndSort applies the filter's window and a whitelisted ORDER BY. A
// non-empty tiebreak is appended as a descending second key.
func pageAndSort(f shared.Filter, cols sortColumns, fallback, tiebreak string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Paged() {
			db = db.Offset(f.Offset()).Limit(f.PageSize)
		}
		column := cols.resolve(f.OrderBy, fallback)
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sortDesc(f.OrderDir)})
		if tiebreak != "" && tiebreak != column {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: tiebreak}, Desc: true})
		}
		return db
	}
}
