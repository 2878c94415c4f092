package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// canvas is the drawing surface used by the layout pass. Coordinates are points from the top-left.
type canvas interface {
	AddPage()
	PageSize() (w, h float64)
	SetFont(bold bool, size float64)
	TextWidth(s string) float64
	Text(x, y float64, s string)
	Line(x1, y1, x2, y2 float64)
	Box(x, y, w, h float64, filled bool)
	Image(name string, img *Image, x, y, w, h float64)
	Output(w io.Writer) error
}

// pdfCanvas renders A4 portrait pages through fpdf using the core Helvetica font.
type pdfCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFCanvas(title string) canvas {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("checklistapi", true)
	pdf.SetDrawColor(220, 220, 220)
	pdf.SetFillColor(30, 30, 30)
	return &pdfCanvas{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (c *pdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *pdfCanvas) PageSize() (float64, float64) { return c.pdf.GetPageSize() }

func (c *pdfCanvas) SetFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *pdfCanvas) TextWidth(s string) float64 { return c.pdf.GetStringWidth(c.tr(s)) }

func (c *pdfCanvas) Text(x, y float64, s string) { c.pdf.Text(x, y, c.tr(s)) }

func (c *pdfCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *pdfCanvas) Box(x, y, w, h float64, filled bool) {
	style := "D"
	if filled {
		style = "FD"
	}
	c.pdf.Rect(x, y, w, h, style)
}

func (c *pdfCanvas) Image(name string, img *Image, x, y, w, h float64) {
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func (c *pdfCanvas) Output(w io.Writer) error {
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return c.pdf.Output(w)
}
