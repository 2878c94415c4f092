package report

import (
	"fmt"

	"checklistapi/internal/model"
)

const (
	textMargin = 40.0
	textStep   = 12.0
	textBottom = 770.0
)

type textWriter struct {
	cv    canvas
	right float64
	y     float64
	pages int
}

func (t *textWriter) breakIfNeeded() {
	if t.y > textBottom {
		t.cv.AddPage()
		t.pages++
		t.y = textMargin
	}
}

func (t *textWriter) line(s string, advance float64) {
	for i, l := range wrap(t.cv, s, t.right-textMargin) {
		if i > 0 {
			t.y += textStep
		}
		t.breakIfNeeded()
		t.cv.Text(textMargin, t.y, l)
	}
	t.y += advance
}

func (t *textWriter) rule() {
	t.breakIfNeeded()
	t.cv.Line(textMargin, t.y, t.right, t.y)
	t.y += 16
}

func (t *textWriter) item(title, detail string, status model.Status, notes *string) {
	t.line(fmt.Sprintf("%s — %s", title, status.Label()), textStep)
	if detail != "" {
		t.line("  Detalhe: "+detail, textStep)
	}
	if n := model.NotesText(notes); n != "" {
		t.line("  Obs.: "+n, textStep)
	}
}

// layoutText writes the listing variant: metadata, then every item as "title — status"
// with optional detail and notes lines.
func layoutText(cv canvas, c *model.Checklist) Summary {
	w, _ := cv.PageSize()
	cv.AddPage()
	t := &textWriter{cv: cv, right: w - textMargin, y: textMargin, pages: 1}

	cv.SetFont(true, 16)
	t.line("Checklist: "+c.Title, 20)
	cv.SetFont(false, 10)
	t.line("ID: "+c.ID, 14)
	t.line("Criado em: "+c.CreatedAt, 20)
	t.rule()

	d := c.InitialData
	cv.SetFont(true, 10)
	t.line("Dados Iniciais", 14)
	cv.SetFont(false, 10)
	t.line("Placa: "+d.Plate, textStep)
	t.line("Motorista: "+d.Driver, textStep)
	t.line("Inspetor: "+d.Inspector, textStep)
	t.line("Marca: "+d.Brand, textStep)
	t.line("Modelo: "+d.Model, textStep)
	if d.Odometer != "" {
		t.line("Quilometragem: "+d.Odometer, textStep)
	}
	t.y += 8
	t.rule()

	cv.SetFont(true, 10)
	t.line("Verificações (Etapa 2)", 14)
	cv.SetFont(false, 10)
	for _, v := range c.Verifications {
		t.item(v.Title, v.Detail, v.Status, v.Notes)
	}
	t.y += textStep
	t.rule()

	cv.SetFont(true, 10)
	t.line("Inspeções (Etapa 3)", 14)
	cv.SetFont(false, 10)
	for _, it := range c.Inspections {
		t.item(it.Title, it.Detail, it.Status, it.Notes)
		if n := len(it.Media); n > 0 {
			t.line(fmt.Sprintf("  Fotos: %d", n), textStep)
		}
	}

	return Summary{Pages: t.pages}
}
