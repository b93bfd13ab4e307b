package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalId     string          `gorm:"type:varchar(64);uniqueIndex;not null"` // catalog "Uniq Id"
	Name           string          `gorm:"type:text;not null"`
	Category       string          `gorm:"type:text;index"`
	Brand          string          `gorm:"type:varchar(255);index"`
	Material       string          `gorm:"type:varchar(255)"`
	SellingPrice   string          `gorm:"type:varchar(64)"` // raw, e.g. "$12.99"
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	Attributes     datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}
