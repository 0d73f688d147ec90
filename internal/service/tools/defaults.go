package tools

import "github.com/zhouzirui/sales-analyst/backend/internal/model/sales"

// NewSalesRegistry wires the three analyst lookups in the order they are
// advertised to the model.
func NewSalesRegistry(fixtures sales.Fixtures, detailsPath string) *Registry {
	return NewRegistry(
		NewSalesQuery(fixtures),
		NewProductQuery(fixtures),
		NewProductDetails(detailsPath),
	)
}
