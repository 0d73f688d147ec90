package sales

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Product mirrors a document of the products collection.
type Product struct {
	ID       string  `json:"_id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Category string  `json:"category" yaml:"category"`
	Stock    int     `json:"stock" yaml:"stock"`
}

// Sale mirrors a document of the sales collection.
type Sale struct {
	ProductID   string  `json:"productId" yaml:"productId"`
	ProductName string  `json:"productName" yaml:"productName"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	TotalPrice  float64 `json:"totalPrice" yaml:"totalPrice"`
	SaleDate    string  `json:"saleDate" yaml:"saleDate"`
}

// Summary is the canned answer to a sales count query.
type Summary struct {
	Count  int    `json:"count" yaml:"count"`
	Period string `json:"period" yaml:"period"`
}

// Fixtures is the static dataset behind the mocked collections.
type Fixtures struct {
	Summary  Summary   `yaml:"summary"`
	Sales    []Sale    `yaml:"sales"`
	Products []Product `yaml:"products"`
}

//go:embed fixtures.yaml
var fixturesYAML []byte

// DefaultFixtures decodes the dataset compiled into the binary.
func DefaultFixtures() (Fixtures, error) {
	return ParseFixtures(fixturesYAML)
}

// ParseFixtures decodes a YAML fixture document.
func ParseFixtures(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("decode sales fixtures: %w", err)
	}
	if len(f.Products) == 0 {
		return Fixtures{}, fmt.Errorf("decode sales fixtures: no products defined")
	}
	return f, nil
}
