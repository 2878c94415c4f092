// Package report renders checklists as printable A4 PDF documents, either as a
// text listing or with the inspection photos embedded in a grid.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"checklistapi/internal/logging"
	"checklistapi/internal/model"
)

type Mode string

const (
	ModeText   Mode = "text"
	ModeImages Mode = "images"
)

var ErrUnknownMode = errors.New("unknown report mode")

// ParseMode accepts "text" (the default when empty) and "images".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeText:
		return ModeText, nil
	case ModeImages:
		return ModeImages, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Summary describes what ended up in a rendered document.
type Summary struct {
	Pages         int `json:"pages"`
	Images        int `json:"images"`
	FailedImages  int `json:"failedImages"`
	SkippedImages int `json:"skippedImages"`
	OmittedItems  int `json:"omittedItems"`
}

// DefaultMaxPages caps the image mode document.
const DefaultMaxPages = 3

type Option func(*Generator)

// WithMaxPages sets the image mode page cap. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(g *Generator) {
		if n >= 1 {
			g.maxPages = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = logging.Component(l, "report") }
}

type Generator struct {
	loader    *ImageLoader
	maxPages  int
	log       *zap.Logger
	newCanvas func(title string) canvas
}

// NewGenerator builds a Generator. A nil loader gets a default one without bucket access.
func NewGenerator(loader *ImageLoader, opts ...Option) *Generator {
	g := &Generator{
		loader:    loader,
		maxPages:  DefaultMaxPages,
		log:       zap.NewNop(),
		newCanvas: newPDFCanvas,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.loader == nil {
		g.loader = NewImageLoader(nil)
	}
	return g
}

// Filename is the suggested download name for c.
func Filename(c *model.Checklist, mode Mode) string {
	if mode == ModeImages {
		return fmt.Sprintf("checklist-%s-imagens.pdf", c.ID)
	}
	return fmt.Sprintf("checklist-%s.pdf", c.ID)
}

// Render lays out c in the given mode and writes the PDF to w.
func (g *Generator) Render(ctx context.Context, c *model.Checklist, mode Mode, w io.Writer) (Summary, error) {
	if c == nil {
		return Summary{}, errors.New("report: nil checklist")
	}
	start := time.Now()
	cv := g.newCanvas("Checklist: " + c.Title)

	s, err := g.layout(ctx, cv, c, mode)
	if err != nil {
		return s, err
	}
	if err := cv.Output(w); err != nil {
		return s, err
	}

	g.log.Info("report rendered",
		zap.String("event", "report_rendered"),
		zap.String("id", c.ID),
		zap.String("mode", string(mode)),
		zap.Int("pages", s.Pages),
		zap.Int("images", s.Images),
		zap.Int("failed_images", s.FailedImages),
		zap.Int("skipped_images", s.SkippedImages),
		zap.Int("omitted_items", s.OmittedItems),
		logging.Since(start),
	)
	return s, nil
}

func (g *Generator) layout(ctx context.Context, cv canvas, c *model.Checklist, mode Mode) (Summary, error) {
	switch mode {
	case ModeText:
		return layoutText(cv, c), nil
	case ModeImages:
		images := g.loader.LoadAll(ctx, c)
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		return layoutImages(cv, c, images, g.maxPages), nil
	}
	return Summary{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// wrap splits s into lines no wider than width using the canvas' current font.
func wrap(cv canvas, s string, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, word := range words[1:] {
		next := cur + " " + word
		if cv.TextWidth(next) > width {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	return append(lines, cur)
}
