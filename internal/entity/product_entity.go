package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id             uuid.UUID
	ExternalId     string
	Name           string
	Category       string
	Brand          string
	Material       string
	SellingPrice   string
	Document       string
	EmbeddingValue []float32
	Attributes     map[string]string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
