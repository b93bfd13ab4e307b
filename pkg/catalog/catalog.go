// Package catalog loads product listings from files and prepares them for indexing.
package catalog

import (
	"fmt"
	"strings"
)

// Column headers of the catalog dataset
const (
	ColumnID            = "Uniq Id"
	ColumnName          = "Product Name"
	ColumnAbout         = "About Product"
	ColumnSpecification = "Product Specification"
	ColumnPrice         = "Selling Price"
	ColumnCategory      = "category"
	ColumnBrand         = "brand"
	ColumnMaterial      = "material"
)

// Row is one product listing as read from a source file
type Row struct {
	UniqID        string            `yaml:"uniq_id"`
	Name          string            `yaml:"product_name"`
	About         string            `yaml:"about_product"`
	Specification string            `yaml:"product_specification"`
	SellingPrice  string            `yaml:"selling_price"`
	Category      string            `yaml:"category"`
	Brand         string            `yaml:"brand"`
	Material      string            `yaml:"material"`
	Extra         map[string]string `yaml:"attributes,omitempty"`
}

// EmbedText is the document embedded for a row
func EmbedText(r Row) string {
	return fmt.Sprintf("Product Name: %s. About Product: %s. Product Specification: %s",
		strings.TrimSpace(r.Name),
		strings.TrimSpace(r.About),
		strings.TrimSpace(r.Specification),
	)
}

// NeedsEnrichment reports whether any of the structured fields is blank
func (r Row) NeedsEnrichment() bool {
	return r.Category == "" || r.Brand == "" || r.Material == ""
}

// Validate rejects rows that cannot be indexed
func (r Row) Validate() error {
	if strings.TrimSpace(r.UniqID) == "" {
		return fmt.Errorf("row %q: missing %s", r.Name, ColumnID)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("row %s: missing %s", r.UniqID, ColumnName)
	}
	return nil
}
