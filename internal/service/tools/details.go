package tools

import (
	"context"
	"encoding/json"
	"log"
	"os"
)

// ProductDetails answers query_json_product_details by reading a JSON file
// keyed by SKU. The file is read on every call so edits apply without restart.
type ProductDetails struct {
	path string
}

// NewProductDetails returns a lookup over the JSON document at path.
func NewProductDetails(path string) *ProductDetails {
	return &ProductDetails{path: path}
}

func (d *ProductDetails) Definition() Definition {
	return Definition{
		Name:        "query_json_product_details",
		Description: "Retrieve detailed product information from local JSON files (description, manufacturer, warranty).",
		Params: []Param{
			{
				Name:        "product_sku",
				Type:        TypeString,
				Description: "Product SKU to look up",
				Required:    true,
			},
		},
	}
}

func (d *ProductDetails) Run(_ context.Context, args map[string]any) (any, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		log.Printf("[tools] error reading product details: %v", err)
		return map[string]string{"error": "Failed to read product details"}, nil
	}

	var catalog map[string]json.RawMessage
	if err := json.Unmarshal(raw, &catalog); err != nil {
		log.Printf("[tools] error parsing product details: %v", err)
		return map[string]string{"error": "Failed to read product details"}, nil
	}

	entry, ok := catalog[stringArg(args, "product_sku")]
	if !ok {
		return map[string]string{"error": "Product not found"}, nil
	}
	return entry, nil
}
