package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-clinic-scraper/pkg/config"
	"github.com/shouni/go-clinic-scraper/pkg/extract"
	"github.com/shouni/go-clinic-scraper/pkg/types"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher はテスト用の extract.Fetcher インターフェースの実装です。
type MockFetcher struct {
	htmlContent string
	fetchError  error
}

func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return []byte(m.htmlContent), nil
}

const clinicPage = `<html><head><title>Allsports Podiatry Noosa</title></head><body>
<main>
<h1>Allsports Podiatry Noosa</h1>
<p>123 Main St Noosa QLD 4567</p>
<p>Call (07) 5555 1234 today</p>
<p>Email noosa@myfootdr.com.au</p>
<h2>Services Available at this clinic</h2>
<article class="service"><h3>Podiatry</h3><p>General foot care</p></article>
<article class="service"><h3>[Orthotics](https://www.myfootdr.com.au/orthotics/)</h3></article>
<div class="spacer"></div>
<article class="service"><p>no heading</p></article>
<article class="service"><h3>AB</h3></article>
<h2>Our Team</h2>
<article><h3>Dr Jane Smith</h3></article>
</main>
</body></html>`

// ======================================================================
// テスト関数
// ======================================================================

func TestNewExtractor(t *testing.T) {
	t.Run("success_with_valid_fetcher", func(t *testing.T) {
		extractor, err := extract.NewExtractor(&MockFetcher{}, nil)
		assert.NoError(t, err)
		assert.NotNil(t, extractor)
	})

	t.Run("error_with_nil_fetcher", func(t *testing.T) {
		extractor, err := extract.NewExtractor(nil, nil)
		assert.ErrorIs(t, err, extract.ErrNilFetcher)
		assert.Nil(t, extractor)
	})
}

func TestExtract(t *testing.T) {
	link := types.ClinicLink{Name: "My FootDr Noosa", URL: "https://www.myfootdr.com.au/our-clinics/noosa/"}

	testCases := []struct {
		name          string
		html          string
		fetchErr      error
		expected      *types.ClinicRecord
		expectedError bool
	}{
		{
			name:          "fetch_error",
			fetchErr:      errors.New("network timeout"),
			expectedError: true,
		},
		{
			name: "full_clinic_page",
			html: clinicPage,
			expected: &types.ClinicRecord{
				Name:     "My FootDr Noosa",
				Address:  "123 Main St Noosa QLD 4567",
				Email:    "noosa@myfootdr.com.au",
				Phone:    "(07) 5555 1234",
				Services: "Podiatry, Orthotics",
			},
		},
		{
			name:     "page_without_any_fields_still_yields_record",
			html:     `<html><body><p>Coming soon</p></body></html>`,
			expected: &types.ClinicRecord{Name: "My FootDr Noosa"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			extractor, err := extract.NewExtractor(&MockFetcher{htmlContent: tc.html, fetchError: tc.fetchErr}, nil)
			require.NoError(t, err)

			record, err := extractor.Extract(context.Background(), link)
			if tc.expectedError {
				assert.Error(t, err)
				assert.Nil(t, record)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, record)
		})
	}
}

func TestExtract_OverrideReplacesAddress(t *testing.T) {
	overrides := config.NewOverrides(map[string]string{
		"Allsports Podiatry Noosa": "Unit 4, 17 Sunshine Beach Rd\nNoosa QLD 4567",
	})
	extractor, err := extract.NewExtractor(&MockFetcher{htmlContent: clinicPage}, overrides)
	require.NoError(t, err)

	t.Run("exact_name_is_overridden", func(t *testing.T) {
		record, err := extractor.Extract(context.Background(), types.ClinicLink{Name: "Allsports Podiatry Noosa"})
		require.NoError(t, err)
		assert.Equal(t, "Unit 4, 17 Sunshine Beach Rd\nNoosa QLD 4567", record.Address)
		assert.Equal(t, "(07) 5555 1234", record.Phone, "other fields keep extracted values")
	})

	t.Run("different_name_keeps_extracted_address", func(t *testing.T) {
		record, err := extractor.Extract(context.Background(), types.ClinicLink{Name: "allsports podiatry noosa"})
		require.NoError(t, err)
		assert.Equal(t, "123 Main St Noosa QLD 4567", record.Address)
	})
}

func TestExtract_ServicesStopAtEndOfSiblings(t *testing.T) {
	html := `<html><body>
<section>
  <h3>Services Available</h3>
  <article><h3>Ingrown Toenails</h3></article>
  <article><h3>Sports Podiatry</h3></article>
</section>
<article><h3>Outside Section</h3></article>
</body></html>`

	extractor, err := extract.NewExtractor(&MockFetcher{htmlContent: html}, nil)
	require.NoError(t, err)

	record, err := extractor.Extract(context.Background(), types.ClinicLink{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Ingrown Toenails, Sports Podiatry", record.Services)
}

func TestExtract_NonBreakingSpaces(t *testing.T) {
	page := `<html><body>
<p>Visit 123&nbsp;Main St Noosa QLD&nbsp;4567</p>
<p>Call&nbsp;(07)&nbsp;5555&nbsp;1234</p>
</body></html>`
	extractor, err := extract.NewExtractor(&MockFetcher{htmlContent: page}, nil)
	require.NoError(t, err)

	record, err := extractor.Extract(context.Background(), types.ClinicLink{Name: "Noosa", URL: "https://www.myfootdr.com.au/our-clinics/noosa/"})
	require.NoError(t, err)
	assert.Equal(t, "123 Main St Noosa QLD 4567", record.Address)
	assert.Equal(t, "(07) 5555 1234", record.Phone)
}
