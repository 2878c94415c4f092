package report

import (
	"fmt"

	"checklistapi/internal/model"
)

const (
	imgMargin    = 40.0
	imgGap       = 8.0
	imgColumns   = 3
	imgAspect    = 0.75
	boxSize      = 10.0
	boxPitch     = 34.0
	headingBand  = 22.0
	minRowHeight = 22.0
)

var statusBoxes = [...]struct {
	label  string
	status model.Status
}{
	{"C", model.StatusConforme},
	{"NC", model.StatusNaoConforme},
	{"N/A", model.StatusNotApplicable},
}

type imageLayout struct {
	cv       canvas
	width    float64
	content  float64
	bottom   float64
	y        float64
	page     int
	maxPages int
	sum      Summary
}

// fits makes room for h points, starting a new page while the cap allows it.
func (l *imageLayout) fits(h float64) bool {
	if l.y+h <= l.bottom {
		return true
	}
	if l.page >= l.maxPages {
		return false
	}
	l.cv.AddPage()
	l.page++
	l.y = imgMargin
	return true
}

type rowItem struct {
	heading    string
	title      string
	detail     string
	notes      string
	status     model.Status
	inspection int
}

// layoutImages writes the photo variant. It is a single forward pass: items that no longer fit
// after the last page are omitted, and image rows that do not fit are skipped.
func layoutImages(cv canvas, c *model.Checklist, images [][]LoadResult, maxPages int) Summary {
	w, h := cv.PageSize()
	cv.AddPage()
	l := &imageLayout{
		cv:       cv,
		width:    w,
		content:  w - 2*imgMargin,
		bottom:   h - imgMargin,
		y:        imgMargin,
		page:     1,
		maxPages: maxPages,
	}
	l.header(c)

	items := make([]rowItem, 0, len(c.Verifications)+len(c.Inspections))
	for _, v := range c.Verifications {
		items = append(items, rowItem{title: v.Title, detail: v.Detail, notes: model.NotesText(v.Notes), status: v.Status, inspection: -1})
	}
	for i, it := range c.Inspections {
		items = append(items, rowItem{title: it.Title, detail: it.Detail, notes: model.NotesText(it.Notes), status: it.Status, inspection: i})
	}
	if len(items) > 0 {
		items[0].heading = "Verificações"
	}
	if n := len(c.Verifications); n < len(items) {
		items[n].heading = "Inspeções"
	}

	for k, it := range items {
		if !l.item(it) {
			l.sum.OmittedItems = len(items) - k
			break
		}
		if it.inspection >= 0 && it.inspection < len(images) {
			l.grid(it.inspection, images[it.inspection])
		}
	}

	l.sum.Pages = l.page
	return l.sum
}

func (l *imageLayout) header(c *model.Checklist) {
	cv := l.cv
	cv.SetFont(true, 16)
	cv.Text(imgMargin, l.y+16, "Checklist: "+c.Title)
	l.y += 26

	d := c.InitialData
	left := []string{
		"Placa: " + d.Plate,
		"Motorista: " + d.Driver,
		"Inspetor: " + d.Inspector,
		"Criado em: " + c.CreatedAt,
	}
	right := []string{
		"Marca: " + d.Brand,
		"Modelo: " + d.Model,
		"Quilometragem: " + d.Odometer,
		"ID: " + c.ID,
	}
	cv.SetFont(false, 9)
	for r := range left {
		base := l.y + 9 + float64(r)*12
		cv.Text(imgMargin, base, left[r])
		cv.Text(imgMargin+l.content/2, base, right[r])
	}
	l.y += float64(len(left))*12 + 8
	cv.Line(imgMargin, l.y, l.width-imgMargin, l.y)
	l.y += 10
}

// item draws a heading (if any) and the item's row band. It reports false when nothing fits anymore.
func (l *imageLayout) item(it rowItem) bool {
	cv := l.cv
	statusW := float64(len(statusBoxes)) * boxPitch
	textW := l.content - statusW - 10

	cv.SetFont(true, 10)
	titleLines := wrap(cv, it.title, textW)
	cv.SetFont(false, 8)
	detailLines := wrap(cv, it.detail, textW)
	cv.SetFont(false, 9)
	var noteLines []string
	if it.notes != "" {
		noteLines = wrap(cv, "Obs.: "+it.notes, textW)
	}

	textH := float64(len(titleLines))*12 + float64(len(detailLines))*10 + float64(len(noteLines))*11
	rowH := max(textH, minRowHeight) + 8
	need := rowH
	if it.heading != "" {
		need += headingBand
	}
	if !l.fits(need) {
		return false
	}

	if it.heading != "" {
		cv.SetFont(true, 12)
		cv.Text(imgMargin, l.y+14, it.heading)
		l.y += headingBand
	}

	top := l.y
	base := top + 10
	cv.SetFont(true, 10)
	for _, s := range titleLines {
		cv.Text(imgMargin, base, s)
		base += 12
	}
	cv.SetFont(false, 8)
	for _, s := range detailLines {
		cv.Text(imgMargin, base, s)
		base += 10
	}
	cv.SetFont(false, 9)
	for _, s := range noteLines {
		cv.Text(imgMargin, base, s)
		base += 11
	}

	cv.SetFont(false, 7)
	x0 := imgMargin + l.content - statusW
	for b, sb := range statusBoxes {
		bx := x0 + float64(b)*boxPitch
		cv.Box(bx, top+2, boxSize, boxSize, it.status == sb.status)
		cv.Text(bx+boxSize+3, top+10, sb.label)
	}

	l.y = top + rowH
	return true
}

// grid places the loaded photos of one inspection item, three per row.
func (l *imageLayout) grid(item int, results []LoadResult) {
	var ready []*Image
	for _, r := range results {
		if r.Err != nil || r.Image == nil {
			l.sum.FailedImages++
			continue
		}
		ready = append(ready, r.Image)
	}

	cellW := (l.content - float64(imgColumns-1)*imgGap) / imgColumns
	cellH := imgAspect * cellW

	for start := 0; start < len(ready); start += imgColumns {
		if !l.fits(cellH) {
			l.sum.SkippedImages += len(ready) - start
			return
		}
		end := min(start+imgColumns, len(ready))
		for col, img := range ready[start:end] {
			x := imgMargin + float64(col)*(cellW+imgGap)
			w, h := fitInto(img, cellW, cellH)
			name := fmt.Sprintf("img-%d-%d", item, start+col)
			l.cv.Image(name, img, x+(cellW-w)/2, l.y+(cellH-h)/2, w, h)
			l.sum.Images++
		}
		l.y += cellH + imgGap
	}
}

func fitInto(img *Image, w, h float64) (float64, float64) {
	if img.Width <= 0 || img.Height <= 0 {
		return w, h
	}
	scale := min(w/float64(img.Width), h/float64(img.Height))
	return float64(img.Width) * scale, float64(img.Height) * scale
}
