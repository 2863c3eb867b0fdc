package export

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	weathererr "weathertrack.app/errors"
	"weathertrack.app/models"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func testRecord() models.EnrichedRequest {
	return models.EnrichedRequest{
		ID:                 1,
		RequestedStartDate: "2026-09-01",
		RequestedEndDate:   "2026-09-02",
		TemperatureUnit:    models.UnitCelsius,
		CreatedAt:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		NormalizedName:     "Paris",
		CountryCode:        "FR",
		Lat:                48.8566,
		Lon:                2.3522,
		Snapshots: []models.WeatherSnapshot{
			{SnapshotDate: "2026-09-01", TempMin: floatPtr(15.5), TempMax: floatPtr(25), Description: strPtr("clear sky")},
			{SnapshotDate: "2026-09-02", TempMin: floatPtr(16), TempMax: floatPtr(26), Description: strPtr("few clouds")},
		},
	}
}

func TestNormalizeFormat(t *testing.T) {
	t.Run("Supported", func(t *testing.T) {
		for input, expected := range map[string]string{
			"json":     "json",
			"CSV":      "csv",
			" xml ":    "xml",
			"md":       "md",
			"markdown": "md",
			"Markdown": "md",
			"PDF":      "pdf",
		} {
			format, err := NormalizeFormat(input)
			assert.NoError(t, err)
			assert.Equal(t, expected, format)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		for _, input := range []string{"", "yaml", "xlsx"} {
			_, err := NormalizeFormat(input)
			assert.Error(t, err)
			appErr, ok := err.(*weathererr.AppError)
			assert.True(t, ok)
			assert.Equal(t, weathererr.ValidationError, appErr.Type)
		}
	})
}

func TestContentTypeAndFilename(t *testing.T) {
	contentType, filename := ContentTypeAndFilename(FormatCSV)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "weather-export.csv", filename)

	contentType, filename = ContentTypeAndFilename(FormatPDF)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "weather-export.pdf", filename)
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := NewRenderer().Render(nil, "yaml")
	assert.Error(t, err)
}

func TestRenderJSON(t *testing.T) {
	out, err := NewRenderer().Render([]models.EnrichedRequest{testRecord()}, FormatJSON)
	assert.NoError(t, err)

	// Indented with two spaces
	assert.True(t, strings.HasPrefix(string(out), "[\n  {\n"))

	var decoded []models.EnrichedRequest
	assert.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "Paris", decoded[0].NormalizedName)
	assert.Len(t, decoded[0].Snapshots, 2)
}

func TestRenderCSV(t *testing.T) {
	t.Run("OneRowPerSnapshot", func(t *testing.T) {
		out, err := NewRenderer().Render([]models.EnrichedRequest{testRecord()}, FormatCSV)
		assert.NoError(t, err)

		lines := strings.Split(string(out), "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, csvHeader, lines[0])
		assert.Equal(t, "1,Paris,FR,2026-09-01,2026-09-02,C,,2026-09-01T00:00:00Z,2026-09-01,15.5,25,clear sky", lines[1])
		assert.Equal(t, "1,Paris,FR,2026-09-01,2026-09-02,C,,2026-09-01T00:00:00Z,2026-09-02,16,26,few clouds", lines[2])
	})

	t.Run("ZeroSnapshotsStillEmitsARow", func(t *testing.T) {
		record := testRecord()
		record.Snapshots = nil

		out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatCSV)
		assert.NoError(t, err)

		lines := strings.Split(string(out), "\n")
		assert.Len(t, lines, 2)
		assert.Equal(t, "1,Paris,FR,2026-09-01,2026-09-02,C,,2026-09-01T00:00:00Z,,,,", lines[1])
	})

	t.Run("Escaping", func(t *testing.T) {
		record := testRecord()
		record.NormalizedName = `Sao Paulo, "SP"`
		record.Notes = strPtr("line one\nline two")
		record.Snapshots = nil

		out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatCSV)
		assert.NoError(t, err)

		line := strings.SplitN(string(out), "\n", 2)[1]
		assert.Contains(t, line, `"Sao Paulo, ""SP"""`)
		assert.Contains(t, line, "\"line one\nline two\"")
	})

	t.Run("EmptyDataset", func(t *testing.T) {
		out, err := NewRenderer().Render(nil, FormatCSV)
		assert.NoError(t, err)
		assert.Equal(t, csvHeader, string(out))
	})
}

func TestRenderXML(t *testing.T) {
	out, err := NewRenderer().Render([]models.EnrichedRequest{testRecord()}, FormatXML)
	assert.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, "<weather_export>")
	assert.Contains(t, doc, "    <normalized_name>Paris</normalized_name>")
	assert.Contains(t, doc, "        <temp_min>15.5</temp_min>")
	assert.True(t, strings.HasSuffix(doc, "</weather_export>"))

	t.Run("Escaping", func(t *testing.T) {
		record := testRecord()
		record.NormalizedName = `<Tom & "Jerry's">`
		record.Snapshots = nil

		out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatXML)
		assert.NoError(t, err)
		assert.Contains(t, string(out), "&lt;Tom &amp; &quot;Jerry&apos;s&quot;&gt;")
	})

	t.Run("AbsentValuesAreEmptyElements", func(t *testing.T) {
		record := testRecord()
		record.Snapshots = []models.WeatherSnapshot{{SnapshotDate: "2026-09-01"}}

		out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatXML)
		assert.NoError(t, err)
		assert.Contains(t, string(out), "<temp_min></temp_min>")
		assert.Contains(t, string(out), "<description></description>")
	})
}

func TestRenderMarkdown(t *testing.T) {
	record := testRecord()
	record.Notes = strPtr("check #hotel [booking]")

	out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatMarkdown)
	assert.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "# Weather Export\n"))
	assert.Contains(t, doc, "## Paris (FR)")
	assert.Contains(t, doc, "- **Unit:** °C")
	assert.Contains(t, doc, `- **Notes:** check \#hotel \[booking\]`)
	assert.Contains(t, doc, "| 2026-09-01 | 15.5 | 25 | clear sky |")

	t.Run("AbsentValuesAsDashes", func(t *testing.T) {
		record := testRecord()
		record.Notes = nil
		record.Snapshots = []models.WeatherSnapshot{{SnapshotDate: "2026-09-01"}}

		out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatMarkdown)
		assert.NoError(t, err)
		assert.NotContains(t, string(out), "**Notes:**")
		assert.Contains(t, string(out), "| 2026-09-01 | - | - | - |")
	})

	t.Run("PipesInDescriptionEscaped", func(t *testing.T) {
		record := testRecord()
		record.Snapshots = []models.WeatherSnapshot{
			{SnapshotDate: "2026-09-01", Description: strPtr("sun | clouds")},
		}

		out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatMarkdown)
		assert.NoError(t, err)
		assert.Contains(t, string(out), `sun \| clouds`)
	})
}

func TestRenderPDF(t *testing.T) {
	out, err := NewRenderer().Render([]models.EnrichedRequest{testRecord()}, FormatPDF)
	assert.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

// pdfStreamContent inflates every zlib stream object in the document and
// concatenates the results, exposing the raw drawing operators.
func pdfStreamContent(t *testing.T, out []byte) string {
	t.Helper()
	var content bytes.Buffer
	rest := out
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		data := bytes.TrimSuffix(rest[:end], []byte("\n"))
		if reader, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
			if inflated, err := io.ReadAll(reader); err == nil {
				content.Write(inflated)
			}
			reader.Close()
		}
		rest = rest[end+len("endstream"):]
	}
	return content.String()
}

func TestRenderPDF_TranslatesNonASCIIText(t *testing.T) {
	record := testRecord()
	record.NormalizedName = "São Paulo"
	record.CountryCode = "BR"

	out, err := NewRenderer().Render([]models.EnrichedRequest{record}, FormatPDF)
	assert.NoError(t, err)

	content := pdfStreamContent(t, out)
	// cp1252 bytes for the accented name and the degree sign, never raw UTF-8.
	assert.Contains(t, content, "S\xe3o Paulo")
	assert.Contains(t, content, "\xb0C")
	assert.NotContains(t, content, "S\xc3\xa3o")
	assert.NotContains(t, content, "\xc2\xb0")
}

func TestRenderPDF_ManyRecordsPaginate(t *testing.T) {
	records := make([]models.EnrichedRequest, 0, 60)
	for i := 0; i < 60; i++ {
		record := testRecord()
		record.ID = uint(i + 1)
		records = append(records, record)
	}

	out, err := NewRenderer().Render(records, FormatPDF)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}
