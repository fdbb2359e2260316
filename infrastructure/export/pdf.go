package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"futuremap/domain/core/aggregates"
)

const (
	pdfFont   = "go"
	pdfMargin = 15.0
	lineH     = 5.0
)

// PDFRenderer writes a printable summary of a canvas
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDFRenderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render returns the PDF document for the snapshot, stamped with generatedAt
func (r *PDFRenderer) Render(snap aggregates.CanvasSnapshot, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", gobold.TTF)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(generatedAt)
	pdf.SetTitle("Career Path: "+pathName(snap.ID), true)
	pdf.AddPage()

	width, _ := pdf.GetPageSize()
	textWidth := width - 2*pdfMargin

	pdf.SetFont(pdfFont, "B", 18)
	pdf.MultiCell(textWidth, 8, "Career Path: "+pathName(snap.ID), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(pdfFont, "", 10)
	pdf.MultiCell(textWidth, lineH, "Generated on: "+generatedAt.Format("2006-01-02 15:04:05"), "", "L", false)
	pdf.Ln(5)

	total := 0
	for _, card := range snap.Cards {
		total += card.Cost
	}
	heading(pdf, textWidth, "Summary")
	pdf.MultiCell(textWidth, lineH, fmt.Sprintf("Total Cards: %d", len(snap.Cards)), "", "L", false)
	pdf.MultiCell(textWidth, lineH, "Total Cost: "+formatCost(total), "", "L", false)
	pdf.Ln(5)

	titles := make(map[string]string, len(snap.Cards))
	if len(snap.Cards) > 0 {
		heading(pdf, textWidth, "Cards")
		for i, card := range snap.Cards {
			titles[card.ID] = card.Title

			pdf.SetFont(pdfFont, "B", 10)
			pdf.MultiCell(textWidth, lineH, fmt.Sprintf("%d. %s (%s)", i+1, card.Title, strings.ToUpper(string(card.Type))), "", "L", false)
			pdf.SetFont(pdfFont, "", 10)
			pdf.SetX(pdfMargin + 5)
			pdf.MultiCell(textWidth-5, lineH, "Duration: "+card.Duration, "", "L", false)
			pdf.SetX(pdfMargin + 5)
			pdf.MultiCell(textWidth-5, lineH, "Cost: "+formatCost(card.Cost), "", "L", false)
			pdf.SetX(pdfMargin + 5)
			pdf.MultiCell(textWidth-5, lineH, "Position: "+card.Position.String(), "", "L", false)
			pdf.Ln(lineH)
		}
	}

	if len(snap.Connections) > 0 {
		heading(pdf, textWidth, "Connections")
		for i, conn := range snap.Connections {
			pdf.MultiCell(textWidth, lineH, fmt.Sprintf("%d. %s → %s", i+1, titleOr(titles, conn.From), titleOr(titles, conn.To)), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, width float64, text string) {
	pdf.SetFont(pdfFont, "B", 14)
	pdf.MultiCell(width, 7, text, "", "L", false)
	pdf.SetFont(pdfFont, "", 10)
}

func titleOr(titles map[string]string, id string) string {
	if title, ok := titles[id]; ok {
		return title
	}
	return id
}

func pathName(id string) string {
	if id == "" {
		return "Unnamed"
	}
	return id
}

// formatCost renders rupees with thousands separators, e.g. INR 1,250,000
func formatCost(cost int) string {
	sign := ""
	if cost < 0 {
		sign = "-"
		cost = -cost
	}
	digits := strconv.Itoa(cost)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return "INR " + sign + b.String()
}
