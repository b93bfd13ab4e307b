package dto

import "time"

// ProductInput mirrors one row of the catalog CSV
type ProductInput struct {
	UniqID               string            `json:"uniq_id" validate:"required,max=64"`
	ProductName          string            `json:"product_name" validate:"required"`
	AboutProduct         string            `json:"about_product"`
	ProductSpecification string            `json:"product_specification"`
	SellingPrice         string            `json:"selling_price"`
	Category             string            `json:"category"`
	Brand                string            `json:"brand"`
	Material             string            `json:"material"`
	Attributes           map[string]string `json:"attributes,omitempty"`
}

type IndexProductsRequest struct {
	Products []ProductInput `json:"products" validate:"required,min=1,max=500,dive"`
}

type IndexProductsResponse struct {
	Queued int `json:"queued"`
}

// PublishIndexProductMessage is the payload on the indexing topic
type PublishIndexProductMessage struct {
	Product ProductInput `json:"product"`
}

// ProductListQuery filters the admin product listing. Brand takes a comma separated list.
type ProductListQuery struct {
	Category string `query:"category"`
	Brand    string `query:"brand"`
	Q        string `query:"q"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

type ProductResponse struct {
	UniqID       string            `json:"uniq_id"`
	ProductName  string            `json:"product_name"`
	Category     string            `json:"category"`
	Brand        string            `json:"brand"`
	Material     string            `json:"material"`
	SellingPrice string            `json:"selling_price"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	IndexedAt    time.Time         `json:"indexed_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}
