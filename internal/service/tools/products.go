package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhouzirui/sales-analyst/backend/internal/model/sales"
)

// ProductQuery answers query_mongodb_products from fixture data.
type ProductQuery struct {
	fixtures sales.Fixtures
}

// NewProductQuery returns the products collection mock.
func NewProductQuery(fixtures sales.Fixtures) *ProductQuery {
	return &ProductQuery{fixtures: fixtures}
}

func (q *ProductQuery) Definition() Definition {
	return Definition{
		Name:        "query_mongodb_products",
		Description: "Query the MongoDB products collection. Use this for product prices, stock levels, categories, etc.",
		Params: []Param{
			{
				Name:        "product_identifier",
				Type:        TypeString,
				Description: "Product ID or name to search for",
				Required:    true,
			},
			{
				Name:        "field",
				Type:        TypeString,
				Description: "Specific field to retrieve (price, stock, category)",
			},
		},
	}
}

func (q *ProductQuery) Run(_ context.Context, args map[string]any) (any, error) {
	product := q.lookup(stringArg(args, "product_identifier"))

	field := strings.ToLower(stringArg(args, "field"))
	if field == "" {
		return product, nil
	}

	out := map[string]any{"_id": product.ID, "name": product.Name}
	switch field {
	case "price":
		out["price"] = product.Price
	case "stock":
		out["stock"] = product.Stock
	case "category":
		out["category"] = product.Category
	default:
		return nil, fmt.Errorf("unknown field %q, expected price, stock or category", field)
	}
	return out, nil
}

// lookup matches by ID or name. The mocked collection always answers, so an
// unknown identifier resolves to the first product.
func (q *ProductQuery) lookup(identifier string) sales.Product {
	for _, p := range q.fixtures.Products {
		if strings.EqualFold(p.ID, identifier) || strings.EqualFold(p.Name, identifier) {
			return p
		}
	}
	return q.fixtures.Products[0]
}
