// Package specification holds composable GORM query fragments for repositories.
package specification

import "gorm.io/gorm"

// Specification narrows or orders a query
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
