package tools

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/zhouzirui/sales-analyst/backend/internal/model/sales"
)

// SalesQuery answers query_mongodb_sales from fixture data.
type SalesQuery struct {
	fixtures sales.Fixtures
}

// NewSalesQuery returns the sales collection mock.
func NewSalesQuery(fixtures sales.Fixtures) *SalesQuery {
	return &SalesQuery{fixtures: fixtures}
}

func (q *SalesQuery) Definition() Definition {
	return Definition{
		Name:        "query_mongodb_sales",
		Description: "Query the MongoDB sales collection. Use this for sales count, sales by date, sales by product, etc.",
		Params: []Param{
			{
				Name:        "query_type",
				Type:        TypeString,
				Description: "Type of MongoDB query",
				Enum:        []string{"count", "find", "aggregate"},
				Required:    true,
			},
			{
				Name:        "filters",
				Type:        TypeObject,
				Description: "MongoDB filter criteria (e.g., date ranges, productId)",
			},
		},
	}
}

func (q *SalesQuery) Run(_ context.Context, args map[string]any) (any, error) {
	queryType := stringArg(args, "query_type")
	filters, _ := args["filters"].(map[string]any)

	switch queryType {
	case "count":
		return q.fixtures.Summary, nil
	case "find":
		return map[string]any{"sales": q.filter(filters)}, nil
	case "aggregate":
		matched := q.filter(filters)
		quantity := 0
		revenue := 0.0
		for _, s := range matched {
			quantity += s.Quantity
			revenue += s.TotalPrice
		}
		return map[string]any{
			"totalQuantity": quantity,
			"totalRevenue":  math.Round(revenue*100) / 100,
			"sales":         matched,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported query_type %q, expected count, find or aggregate", queryType)
	}
}

func (q *SalesQuery) filter(filters map[string]any) []sales.Sale {
	productID, _ := filters["productId"].(string)
	productID = strings.TrimSpace(productID)

	out := make([]sales.Sale, 0, len(q.fixtures.Sales))
	for _, s := range q.fixtures.Sales {
		if productID != "" && !strings.EqualFold(s.ProductID, productID) {
			continue
		}
		out = append(out, s)
	}
	return out
}
