package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"weathertrack.app/models"
)

// Fixed PDF layout constants. Line pitch is font size + 4pt.
const (
	pdfMargin    = 50.0
	pdfFontTitle = 18.0
	pdfFontHead  = 14.0
	pdfFontBody  = 10.0

	pdfMaxLineChars    = 500
	pdfMaxNameChars    = 200
	pdfMaxCountryChars = 10
	pdfMaxDescChars    = 100
)

func renderPDF(records []models.EnrichedRequest) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	// Core fonts are cp1252; UTF-8 input has to be translated or degree signs
	// and accented location names come out garbled.
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()
	pdf.AddPage()

	y := pdfMargin

	// drawLine places one truncated text line and starts a new page when the
	// line would fall below the bottom margin.
	drawLine := func(text string, size float64) {
		if y+size+4 > pageHeight-pdfMargin {
			pdf.AddPage()
			y = pdfMargin
		}
		pdf.SetFont("Helvetica", "", size)
		pdf.Text(pdfMargin, y+size, translate(truncate(text, pdfMaxLineChars)))
		y += size + 4
	}

	drawLine("Weather Export", pdfFontTitle)
	y += 8

	for _, record := range records {
		name := truncate(record.NormalizedName, pdfMaxNameChars)
		country := truncate(record.CountryCode, pdfMaxCountryChars)
		drawLine(fmt.Sprintf("%s (%s)", name, country), pdfFontHead)
		drawLine(fmt.Sprintf("Request #%d | %s to %s | °%s",
			record.ID, record.RequestedStartDate, record.RequestedEndDate, record.TemperatureUnit), pdfFontBody)

		for _, snapshot := range record.Snapshots {
			description := "-"
			if snapshot.Description != nil && *snapshot.Description != "" {
				description = truncate(*snapshot.Description, pdfMaxDescChars)
			}
			drawLine(fmt.Sprintf("  %s: %s° to %s° — %s",
				snapshot.SnapshotDate,
				formatTempOrDash(snapshot.TempMin),
				formatTempOrDash(snapshot.TempMax),
				description), pdfFontBody)
		}
		y += 4
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
