package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheme-mitra/backend/internal/scheme"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoader(t *testing.T) {
	path := writeCatalogFile(t, `[
		{
			"name": "Mudra Loan Scheme",
			"url": "https://example.gov.in/mudra",
			"overview": "Collateral free loans for micro enterprises.",
			"benefits": "<ul><li>Loans up to Rs. 10 lakh</li><li>No collateral</li></ul>",
			"tags": ["loan", "micro"]
		},
		{
			"name": "Skill Training Programme",
			"overview": "Training for rural artisans."
		}
	]`)

	records, err := FileLoader(path)()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Mudra Loan Scheme", records[0].Name)
	assert.Equal(t, []string{"loan", "micro"}, records[0].Tags)
	assert.Contains(t, records[0].Benefits, "- Loans up to Rs. 10 lakh")
	assert.Contains(t, records[0].Benefits, "- No collateral")
	assert.NotContains(t, records[0].Benefits, "<li>")
}

func TestFileLoader_MissingFile(t *testing.T) {
	_, err := FileLoader("/nonexistent/schemes.json")()
	assert.Error(t, err)
}

func TestFileLoader_BadJSON(t *testing.T) {
	path := writeCatalogFile(t, `{"not": "an array"}`)
	_, err := FileLoader(path)()
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	t.Run("plain text untouched", func(t *testing.T) {
		assert.Equal(t, "Loans up to 10 lakh.", cleanText("  Loans up to 10 lakh.  "))
	})

	t.Run("strips scripts and collapses whitespace", func(t *testing.T) {
		got := cleanText("<div>Margin   money subsidy<script>alert(1)</script></div>")
		assert.Equal(t, "Margin money subsidy", got)
	})

	t.Run("list items become bulleted lines", func(t *testing.T) {
		got := cleanText("<p>Eligibility:</p><ul><li>Age above 18</li><li>Indian citizen</li></ul>")
		assert.Contains(t, got, "Eligibility:")
		assert.Contains(t, got, "- Age above 18")
		assert.Contains(t, got, "- Indian citizen")
	})
}

func TestCache_RefreshAndServe(t *testing.T) {
	loads := 0
	loader := Loader(func() ([]scheme.RawRecord, error) {
		loads++
		return []scheme.RawRecord{
			{Name: "Mudra Loan", Overview: "Loans for micro units."},
		}, nil
	})

	cache := NewCache(loader, time.Hour)

	entities := cache.Entities()
	require.Len(t, entities, 1)
	assert.Equal(t, "mudra-loan-0", entities[0].ID)

	// Within the TTL the table is served without reloading.
	cache.Entities()
	cache.Entities()
	assert.Equal(t, 1, loads)

	require.NoError(t, cache.ForceRefresh())
	assert.Equal(t, 2, loads)
}

func TestCache_ServesStaleOnFailure(t *testing.T) {
	loads := 0
	loader := Loader(func() ([]scheme.RawRecord, error) {
		loads++
		if loads > 1 {
			return nil, errors.New("source unavailable")
		}
		return []scheme.RawRecord{{Name: "Mudra Loan"}}, nil
	})

	cache := NewCache(loader, time.Hour)
	require.Len(t, cache.Entities(), 1)

	err := cache.ForceRefresh()
	assert.Error(t, err)
	assert.Len(t, cache.Entities(), 1)
}
