package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scheme-mitra/backend/internal/scheme"
)

// Loader produces the raw catalog. The cache calls it on every
// refresh, so it must be safe to call repeatedly.
type Loader func() ([]scheme.RawRecord, error)

// FileLoader reads the catalog from a JSON file. Section text that
// was scraped from portal pages may still carry HTML; it is cleaned
// down to plain text during loading.
func FileLoader(path string) Loader {
	return func() ([]scheme.RawRecord, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}

		var records []scheme.RawRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file: %w", err)
		}

		for i := range records {
			cleanRecord(&records[i])
		}
		return records, nil
	}
}

func cleanRecord(record *scheme.RawRecord) {
	record.Overview = cleanText(record.Overview)
	record.Financial = cleanText(record.Financial)
	record.Benefits = cleanText(record.Benefits)
	record.Eligibility = cleanText(record.Eligibility)
	record.Application = cleanText(record.Application)
	record.Documents = cleanText(record.Documents)
	record.Sources = cleanText(record.Sources)
}

var excessWhitespaceRe = regexp.MustCompile(`[ \t]+`)

// cleanText strips markup from scraped section text. List items are
// turned into bulleted lines so the processor's marker-based
// extraction still sees them.
func cleanText(text string) string {
	if !strings.Contains(text, "<") {
		return strings.TrimSpace(text)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(text)
	}

	doc.Find("script, style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	doc.Find("li").Each(func(i int, s *goquery.Selection) {
		s.SetText("\n- " + strings.TrimSpace(s.Text()))
	})
	doc.Find("br, p, div").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	cleaned := doc.Text()
	cleaned = excessWhitespaceRe.ReplaceAllString(cleaned, " ")

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
