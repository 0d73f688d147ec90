package render

import (
	"strings"
	"testing"
)

func TestMarkdownRender(t *testing.T) {
	out, err := NewMarkdown().Render("**SuperWidget** costs $99.99\n\n| SKU | Stock |\n|---|---|\n| SKU123 | 450 |")
	if err != nil {
		t.Fatalf("Render err: %v", err)
	}

	if !strings.Contains(out, "<strong>SuperWidget</strong>") {
		t.Fatalf("expected bold text, got %s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("expected GFM table, got %s", out)
	}
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out, err := NewMarkdown().Render(`<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("Render err: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw HTML must not be rendered: %s", out)
	}
}
