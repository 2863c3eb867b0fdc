// Package export serializes enriched weather requests into the supported
// document formats. Output is reproducible byte-for-byte for a given input.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	weathererr "weathertrack.app/errors"
	"weathertrack.app/metrics"
	"weathertrack.app/models"
)

// Supported export formats
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatXML      = "xml"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"
)

var supportedFormats = []string{"json", "csv", "xml", "md", "markdown", "pdf"}

// NormalizeFormat validates a requested format case-insensitively and maps
// the "markdown" alias to "md". Must be called before any data is fetched.
func NormalizeFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	for _, supported := range supportedFormats {
		if normalized == supported {
			if normalized == "markdown" {
				return FormatMarkdown, nil
			}
			return normalized, nil
		}
	}
	return "", weathererr.NewValidationError(
		"unsupported format, use one of: " + strings.Join(supportedFormats, ", "))
}

// ContentTypeAndFilename returns the transport metadata for a normalized format
func ContentTypeAndFilename(format string) (string, string) {
	switch format {
	case FormatJSON:
		return "application/json", "weather-export.json"
	case FormatCSV:
		return "text/csv", "weather-export.csv"
	case FormatXML:
		return "application/xml", "weather-export.xml"
	case FormatMarkdown:
		return "text/markdown", "weather-export.md"
	case FormatPDF:
		return "application/pdf", "weather-export.pdf"
	default:
		return "application/octet-stream", "weather-export.txt"
	}
}

// Renderer serializes enriched requests into one of the supported formats
type Renderer struct {
	metrics *metrics.ExportMetrics
}

// NewRenderer creates a new export renderer
func NewRenderer() *Renderer {
	return &Renderer{metrics: metrics.NewExportMetrics()}
}

// Render serializes records into the given normalized format
func (r *Renderer) Render(records []models.EnrichedRequest, format string) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch format {
	case FormatJSON:
		out, err = renderJSON(records)
	case FormatCSV:
		out = renderCSV(records)
	case FormatXML:
		out = renderXML(records)
	case FormatMarkdown:
		out = renderMarkdown(records)
	case FormatPDF:
		out, err = renderPDF(records)
	default:
		err = weathererr.NewValidationError(
			"unsupported format, use one of: " + strings.Join(supportedFormats, ", "))
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordRender(format, status)

	return out, err
}

func renderJSON(records []models.EnrichedRequest) ([]byte, error) {
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export data: %w", err)
	}
	return out, nil
}

const csvHeader = "id,normalized_name,country_code,requested_start_date,requested_end_date," +
	"temperature_unit,notes,created_at,snapshot_date,temp_min,temp_max,description"

func renderCSV(records []models.EnrichedRequest) []byte {
	lines := []string{csvHeader}

	for _, record := range records {
		prefix := []string{
			formatID(record.ID),
			escapeCSV(record.NormalizedName),
			escapeCSV(record.CountryCode),
			record.RequestedStartDate,
			record.RequestedEndDate,
			record.TemperatureUnit,
			escapeCSV(stringValue(record.Notes)),
			formatTime(record.CreatedAt),
		}

		if len(record.Snapshots) == 0 {
			lines = append(lines, strings.Join(append(prefix, "", "", "", ""), ","))
			continue
		}
		for _, snapshot := range record.Snapshots {
			row := append(append([]string{}, prefix...),
				snapshot.SnapshotDate,
				formatTemp(snapshot.TempMin),
				formatTemp(snapshot.TempMax),
				escapeCSV(stringValue(snapshot.Description)),
			)
			lines = append(lines, strings.Join(row, ","))
		}
	}

	return []byte(strings.Join(lines, "\n"))
}

// escapeCSV quotes a field containing a comma, quote, or newline, doubling
// internal quotes
func escapeCSV(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
}

func renderXML(records []models.EnrichedRequest) []byte {
	parts := []string{`<?xml version="1.0" encoding="UTF-8"?>`, "<weather_export>"}

	for _, record := range records {
		parts = append(parts,
			"  <request>",
			"    <id>"+formatID(record.ID)+"</id>",
			"    <normalized_name>"+escapeXML(record.NormalizedName)+"</normalized_name>",
			"    <country_code>"+escapeXML(record.CountryCode)+"</country_code>",
			"    <requested_start_date>"+record.RequestedStartDate+"</requested_start_date>",
			"    <requested_end_date>"+record.RequestedEndDate+"</requested_end_date>",
			"    <temperature_unit>"+record.TemperatureUnit+"</temperature_unit>",
			"    <notes>"+escapeXML(stringValue(record.Notes))+"</notes>",
			"    <created_at>"+formatTime(record.CreatedAt)+"</created_at>",
			"    <snapshots>",
		)
		for _, snapshot := range record.Snapshots {
			parts = append(parts,
				"      <snapshot>",
				"        <snapshot_date>"+snapshot.SnapshotDate+"</snapshot_date>",
				"        <temp_min>"+formatTemp(snapshot.TempMin)+"</temp_min>",
				"        <temp_max>"+formatTemp(snapshot.TempMax)+"</temp_max>",
				"        <description>"+escapeXML(stringValue(snapshot.Description))+"</description>",
				"      </snapshot>",
			)
		}
		parts = append(parts, "    </snapshots>", "  </request>")
	}

	parts = append(parts, "</weather_export>")
	return []byte(strings.Join(parts, "\n"))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(value string) string {
	return xmlEscaper.Replace(value)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"#", `\#`,
	"[", `\[`,
	"]", `\]`,
	"|", `\|`,
)

func escapeMarkdown(value string) string {
	return markdownEscaper.Replace(value)
}

func renderMarkdown(records []models.EnrichedRequest) []byte {
	lines := []string{"# Weather Export", ""}

	for _, record := range records {
		lines = append(lines,
			"## "+escapeMarkdown(record.NormalizedName)+" ("+escapeMarkdown(record.CountryCode)+")",
			"- **Request ID:** "+formatID(record.ID),
			"- **Date range:** "+record.RequestedStartDate+" to "+record.RequestedEndDate,
			"- **Unit:** °"+record.TemperatureUnit,
			"- **Created:** "+formatTime(record.CreatedAt),
		)
		if record.Notes != nil && *record.Notes != "" {
			lines = append(lines, "- **Notes:** "+escapeMarkdown(*record.Notes))
		}
		lines = append(lines,
			"",
			"| Date | Min ° | Max ° | Description |",
			"|------|-------|-------|-------------|",
		)
		for _, snapshot := range record.Snapshots {
			description := "-"
			if snapshot.Description != nil && *snapshot.Description != "" {
				description = strings.ReplaceAll(*snapshot.Description, "|", `\|`)
			}
			lines = append(lines, "| "+snapshot.SnapshotDate+" | "+formatTempOrDash(snapshot.TempMin)+
				" | "+formatTempOrDash(snapshot.TempMax)+" | "+description+" |")
		}
		lines = append(lines, "")
	}

	return []byte(strings.Join(lines, "\n"))
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTemp(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func formatTempOrDash(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
