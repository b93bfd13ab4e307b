package shopping

// Task represents the classified intent of a shopping query
type Task string

const (
	TaskProductSearch     Task = "product_search"
	TaskComparison        Task = "comparison"
	TaskRecommendation    Task = "recommendation"
	TaskAvailabilityCheck Task = "availability_check"
)

// ParseTask maps a raw value onto the task vocabulary.
// Unknown or non-string values collapse to TaskProductSearch.
func ParseTask(raw any) Task {
	s, ok := raw.(string)
	if !ok {
		return TaskProductSearch
	}
	switch Task(s) {
	case TaskProductSearch, TaskComparison, TaskRecommendation, TaskAvailabilityCheck:
		return Task(s)
	}
	return TaskProductSearch
}

// SafetyFlag marks a query that needs careful handling
type SafetyFlag string

const (
	FlagInappropriateContent SafetyFlag = "inappropriate_content"
	FlagMedicalAdvice        SafetyFlag = "medical_advice"
	FlagDangerousProduct     SafetyFlag = "dangerous_product"
)

var knownSafetyFlags = map[SafetyFlag]bool{
	FlagInappropriateContent: true,
	FlagMedicalAdvice:        true,
	FlagDangerousProduct:     true,
}

// IsKnownSafetyFlag reports whether flag belongs to the fixed vocabulary
func IsKnownSafetyFlag(flag string) bool {
	return knownSafetyFlags[SafetyFlag(flag)]
}

// Source identifies a retrieval backend
type Source string

const (
	SourcePrivateRAG Source = "private_rag"
	SourceWebSearch  Source = "web_search"
)

// Origin values stamped on every ProductRecord
const (
	OriginRAG = "rag"
	OriginWeb = "web"
)

// Constraints holds the structured filter intent of a query.
// Missing values are nil. Brand is never nil once extracted.
type Constraints struct {
	Product  *string  `json:"product"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
	Material *string  `json:"material"`
	Brand    []string `json:"brand"`
}

// EmptyConstraints returns the constraint set used when extraction fails
func EmptyConstraints() Constraints {
	return Constraints{Brand: []string{}}
}

// Filters is the retrieval filter mapping derived from Constraints.
// Nil fields are never serialized.
type Filters struct {
	Category *string  `json:"category,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Material *string  `json:"material,omitempty"`
	Brand    []string `json:"brand,omitempty"`
}

// IsEmpty reports whether no filter key is set
func (f Filters) IsEmpty() bool {
	return f.Category == nil && f.MinPrice == nil && f.MaxPrice == nil && f.Material == nil && len(f.Brand) == 0
}

// Plan is the retrieval plan produced by the planner
type Plan struct {
	Sources            []Source `json:"sources"`
	RetrievalFields    []string `json:"retrieval_fields"`
	ComparisonCriteria []string `json:"comparison_criteria"`
	Filters            Filters  `json:"filters"`
}

// HasSource reports whether the plan queries src
func (p Plan) HasSource(src Source) bool {
	for _, s := range p.Sources {
		if s == src {
			return true
		}
	}
	return false
}

var (
	DefaultSources         = []Source{SourcePrivateRAG}
	DefaultRetrievalFields = []string{"title", "price", "rating"}
)

// FallbackPlan is installed when planning fails
func FallbackPlan() Plan {
	return Plan{
		Sources:            []Source{SourcePrivateRAG},
		RetrievalFields:    []string{"title", "price", "rating"},
		ComparisonCriteria: []string{"price"},
		Filters:            Filters{},
	}
}

// ProductRecord is the normalized shape every retriever returns
type ProductRecord struct {
	DocID    string  `json:"doc_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Material string  `json:"material"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
	URL      string  `json:"url,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is blank
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 {
	return &f
}
