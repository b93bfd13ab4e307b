package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// ReadFile picks the reader from the file extension (.csv, .yaml or .yml)
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ReadCSV reads a headered CSV. Known columns map onto Row fields,
// every other non-empty cell lands in Extra.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows := []Row{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, rowFromRecord(header, record))
	}
	return rows, nil
}

func rowFromRecord(header, record []string) Row {
	row := Row{Extra: map[string]string{}}
	for i, col := range header {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])
		switch col {
		case ColumnID:
			row.UniqID = value
		case ColumnName:
			row.Name = value
		case ColumnAbout:
			row.About = value
		case ColumnSpecification:
			row.Specification = value
		case ColumnPrice:
			row.SellingPrice = value
		case ColumnCategory:
			row.Category = value
		case ColumnBrand:
			row.Brand = value
		case ColumnMaterial:
			row.Material = value
		default:
			if value != "" && col != "" {
				row.Extra[col] = value
			}
		}
	}
	return row
}

type yamlCatalog struct {
	Products []Row `yaml:"products"`
}

// ReadYAML reads a fixture file with a top level "products" list
func ReadYAML(r io.Reader) ([]Row, error) {
	var doc yamlCatalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Products == nil {
		return []Row{}, nil
	}
	return doc.Products, nil
}
