package mapper

import (
	"encoding/json"
	"time"

	"voice-shopping-be/internal/entity"
	"voice-shopping-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	attributes := map[string]string{}
	if len(p.Attributes) > 0 {
		// Malformed JSON leaves the map empty
		_ = json.Unmarshal(p.Attributes, &attributes)
	}

	return &entity.Product{
		Id:             p.Id,
		ExternalId:     p.ExternalId,
		Name:           p.Name,
		Category:       p.Category,
		Brand:          p.Brand,
		Material:       p.Material,
		SellingPrice:   p.SellingPrice,
		Document:       p.Document,
		EmbeddingValue: p.EmbeddingValue.Slice(),
		Attributes:     attributes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      p.DeletedAt.Valid,
	}
}

func (m *ProductMapper) ToModel(e *entity.Product) *model.Product {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var attributes datatypes.JSON
	if len(e.Attributes) > 0 {
		if raw, err := json.Marshal(e.Attributes); err == nil {
			attributes = datatypes.JSON(raw)
		}
	}

	return &model.Product{
		Id:             e.Id,
		ExternalId:     e.ExternalId,
		Name:           e.Name,
		Category:       e.Category,
		Brand:          e.Brand,
		Material:       e.Material,
		SellingPrice:   e.SellingPrice,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		Attributes:     attributes,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
