package specification

import (
	"strings"

	"gorm.io/gorm"
)

// ByExternalID matches the catalog "Uniq Id"
type ByExternalID struct {
	ExternalID string
}

func (s ByExternalID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_id = ?", s.ExternalID)
}

// ByCategory is a case-insensitive substring match on the category path
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category ILIKE ?", "%"+s.Category+"%")
}

// ByBrands keeps products of any listed brand
type ByBrands struct {
	Brands []string
}

func (s ByBrands) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Brands) == 0 {
		return db
	}
	return db.Where("LOWER(brand) IN ?", lower(s.Brands))
}

// ProductSearchQuery filters on name or document text
type ProductSearchQuery struct {
	Query string
}

func (s ProductSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("name ILIKE ? OR document ILIKE ?", pattern, pattern)
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
