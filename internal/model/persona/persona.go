package persona

// SalesAnalystID identifies the default assistant served by the web page.
const SalesAnalystID = "sales-analyst"

// Persona captures the assistant attributes exposed to the frontend and the model.
type Persona struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Tagline      string   `json:"tagline"`
	OpeningLine  string   `json:"openingLine"`
	Placeholder  string   `json:"placeholder"`
	Examples     []string `json:"examples,omitempty"`
	SystemPrompt string   `json:"-"`
}

// Seed provides the assistants available out of the box.
func Seed() []Persona {
	return []Persona{
		{
			ID:          SalesAnalystID,
			Name:        "AI Sales Analyst",
			Title:       "Sales Analysis AI",
			Tagline:     "Real-time insights from your data",
			OpeningLine: "Hello! I'm your AI sales analyst. Ask me anything about sales data, product information, or pricing. For example: 'How many sales did we make yesterday?' or 'What is the price of SKU123?'",
			Placeholder: "Ask about sales, products, or pricing...",
			Examples: []string{
				"How many sales did we make yesterday?",
				"What is the price of SKU123?",
				"Who manufactures SKU123 and what warranty does it have?",
			},
			SystemPrompt: "You are an AI sales analyst assistant. You have access to sales data in MongoDB and product details in JSON files. Use the provided tools to query the data and provide helpful insights. Always be clear and concise in your responses. When you receive data from a tool, format it nicely for the user.",
		},
	}
}
