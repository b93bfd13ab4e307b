package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "\ufeffUniq Id,Product Name,About Product,Product Specification,Selling Price,Image\n" +
	"p1,Organic Shampoo,\"Gentle, sulfate free\",Weight: 12oz,$12.99,http://img/1.jpg\n" +
	"p2,Steel Kettle,Boils fast,,$34.50,\n"

func TestEmbedText(t *testing.T) {
	got := EmbedText(Row{Name: " Kettle ", About: "Boils fast", Specification: "1.7L"})
	assert.Equal(t, "Product Name: Kettle. About Product: Boils fast. Product Specification: 1.7L", got)
}

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "p1", rows[0].UniqID)
	assert.Equal(t, "Organic Shampoo", rows[0].Name)
	assert.Equal(t, "Gentle, sulfate free", rows[0].About)
	assert.Equal(t, "$12.99", rows[0].SellingPrice)
	assert.Equal(t, map[string]string{"Image": "http://img/1.jpg"}, rows[0].Extra)

	assert.Empty(t, rows[1].Specification)
	assert.Empty(t, rows[1].Extra)
}

func TestReadCSV_EmptyInput(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadYAML(t *testing.T) {
	doc := `
products:
  - uniq_id: y1
    product_name: Vegan Soap
    selling_price: "$4.00"
    category: soap
    material: vegan
    attributes:
      rating: "4.5"
`
	rows, err := ReadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "y1", rows[0].UniqID)
	assert.Equal(t, "soap", rows[0].Category)
	assert.Equal(t, "4.5", rows[0].Extra["rating"])
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))
	rows, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = ReadFile(filepath.Join(dir, "products.parquet"))
	assert.Error(t, err)

	txtPath := filepath.Join(dir, "products.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = ReadFile(txtPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRowValidate(t *testing.T) {
	assert.NoError(t, Row{UniqID: "a", Name: "b"}.Validate())
	assert.Error(t, Row{Name: "b"}.Validate())
	assert.Error(t, Row{UniqID: "a"}.Validate())
}

func TestEnricher_FillsOnlyBlanks(t *testing.T) {
	fake := llmtest.New().When(`{"category": "Shampoo", "brand": "Dove", "material": null}`, "Product Name: Dove Shampoo")
	e := NewEnricher(fake, logger.NewNopLogger())

	got := e.Enrich(context.Background(), Row{UniqID: "p1", Name: "Dove Shampoo", Material: "organic"})

	assert.Equal(t, "shampoo", got.Category)
	assert.Equal(t, "Dove", got.Brand)
	assert.Equal(t, "organic", got.Material)
}

func TestEnricher_SkipsCompleteRows(t *testing.T) {
	fake := llmtest.New()
	e := NewEnricher(fake, logger.NewNopLogger())

	row := Row{UniqID: "p1", Name: "x", Category: "a", Brand: "b", Material: "c"}
	assert.Equal(t, row, e.Enrich(context.Background(), row))
	assert.Empty(t, fake.Prompts())
}

func TestEnricher_FailureLeavesRowUnchanged(t *testing.T) {
	fake := llmtest.New().FailWhen(errors.New("boom"), "Product Name")
	e := NewEnricher(fake, logger.NewNopLogger())

	row := Row{UniqID: "p1", Name: "Kettle"}
	assert.Equal(t, row, e.Enrich(context.Background(), row))
}

func TestEnricher_TruncatesInputs(t *testing.T) {
	fake := llmtest.New().When(`{"category": "kettle"}`, "Product Name")
	e := NewEnricher(fake, logger.NewNopLogger())

	_, err := e.Extract(context.Background(), Row{Name: strings.Repeat("n", 500), About: strings.Repeat("a", 500)})
	require.NoError(t, err)

	prompt := fake.Prompts()[0]
	assert.Contains(t, prompt, "Product Name: "+strings.Repeat("n", 200)+"\n")
	assert.Contains(t, prompt, "About: "+strings.Repeat("a", 300)+"\n")
}

func TestEnricher_NoJSON(t *testing.T) {
	fake := llmtest.New().When("no idea", "Product Name")
	e := NewEnricher(fake, logger.NewNopLogger())

	_, err := e.Extract(context.Background(), Row{Name: "x"})
	assert.ErrorIs(t, err, ErrNoMetadata)
}
