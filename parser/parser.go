// Package parser turns fetched response bodies into queryable
// documents and validates records before they enter a batch.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-toolkit/models"
)

// Parse builds a queryable document from a raw response body.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Text returns the trimmed text of the first node matching selector,
// or "" when nothing matches.
func Text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// Attr returns the trimmed attribute value of the first node matching
// selector, or "" when the node or attribute is absent.
func Attr(doc *goquery.Document, selector, attr string) string {
	value, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(value)
}

// Texts returns the trimmed text of every node matching selector,
// skipping nodes whose text is empty.
func Texts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// ValidateRecord ensures a record captured at least one field, and a
// non-empty value for every required field.
func ValidateRecord(record *models.Record, required ...string) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.Len() == 0 {
		return fmt.Errorf("record has no fields")
	}
	for _, field := range required {
		value, ok := record.Get(field)
		if !ok || value.IsNull() {
			return fmt.Errorf("record missing %s", field)
		}
		if strings.TrimSpace(value.Text()) == "" {
			return fmt.Errorf("record missing %s", field)
		}
	}
	return nil
}
