package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"

	"pga/internal"
)

// Layout thresholds, in multiples of the glyph font size.
const (
	lineTolerance   = 0.5
	wordGap         = 0.15
	cellGap         = 1.2
	columnTolerance = 1.0
	tableBreakGap   = 2.5

	defaultFontSize = 10.0
)

// ErrUnreadablePDF reports input that is not a PDF pdfcpu can open.
var ErrUnreadablePDF = errors.New("unreadable pdf")

func init() {
	// Never read or write a pdfcpu config directory.
	model.ConfigPath = "disable"
}

// ExtractPages tokenizes a PDF into pages of text and tables. Unreadable page
// content yields an empty page rather than an error.
func ExtractPages(content []byte) ([]internal.Page, error) {
	pageCount, err := validatePDF(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrUnreadablePDF, err)
	}
	if n := r.NumPage(); n < pageCount {
		pageCount = n
	}

	pages := make([]internal.Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pages = append(pages, readPage(r, i))
	}
	return pages, nil
}

func validatePDF(content []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return ctx.PageCount, nil
}

func readPage(r *pdf.Reader, number int) (page internal.Page) {
	page = internal.Page{Number: number, Tables: []internal.Table{}}
	defer func() {
		if recover() != nil {
			page = internal.Page{Number: number, Tables: []internal.Table{}}
		}
	}()

	p := r.Page(number)
	if p.V.IsNull() {
		return page
	}
	return layoutPage(number, p.Content().Text)
}

// LoadPages reads pages already tokenized elsewhere, in the
// {numero_pagina, texto, tabelas} shape.
func LoadPages(r io.Reader) ([]internal.Page, error) {
	var pages []internal.Page
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	for i := range pages {
		if pages[i].Number == 0 {
			pages[i].Number = i + 1
		}
	}
	return pages, nil
}

type lineCell struct {
	x    float64
	text string
}

type textLine struct {
	y     float64
	size  float64
	cells []lineCell
}

// layoutPage rebuilds lines from positioned glyphs, splits lines into cells at
// wide horizontal gaps and groups vertically adjacent lines into tables whose
// columns are aligned on the cells' left edges.
func layoutPage(number int, glyphs []pdf.Text) internal.Page {
	lines := groupLines(glyphs)

	text := make([]string, 0, len(lines))
	for _, l := range lines {
		parts := make([]string, 0, len(l.cells))
		for _, c := range l.cells {
			parts = append(parts, c.text)
		}
		text = append(text, strings.Join(parts, " "))
	}

	tables := []internal.Table{}
	start := 0
	for i := 1; i <= len(lines); i++ {
		if i < len(lines) && lines[i-1].y-lines[i].y <= tableBreakGap*lines[i-1].size {
			continue
		}
		tables = append(tables, alignColumns(lines[start:i]))
		start = i
	}

	return internal.Page{
		Number: number,
		Text:   strings.Join(text, "\n"),
		Tables: tables,
	}
}

func groupLines(glyphs []pdf.Text) []textLine {
	sorted := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []textLine
	var current []pdf.Text
	flush := func() {
		if l, ok := buildLine(current); ok {
			lines = append(lines, l)
		}
		current = nil
	}
	for _, g := range sorted {
		if len(current) > 0 && math.Abs(current[0].Y-g.Y) > lineTolerance*fontSize(current[0]) {
			flush()
		}
		current = append(current, g)
	}
	flush()
	return lines
}

func buildLine(glyphs []pdf.Text) (textLine, bool) {
	if len(glyphs) == 0 {
		return textLine{}, false
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	line := textLine{y: glyphs[0].Y, size: fontSize(glyphs[0])}
	var b strings.Builder
	cellX := glyphs[0].X
	end := glyphs[0].X
	emit := func() {
		if t := strings.TrimSpace(norm.NFC.String(b.String())); t != "" {
			line.cells = append(line.cells, lineCell{x: cellX, text: t})
		}
		b.Reset()
	}

	for i, g := range glyphs {
		gap := g.X - end
		size := fontSize(g)
		switch {
		case i == 0:
		case gap > cellGap*size:
			emit()
			cellX = g.X
		case gap > wordGap*size:
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		end = math.Max(end, g.X+g.W)
	}
	emit()

	return line, len(line.cells) > 0
}

func alignColumns(lines []textLine) internal.Table {
	var starts []float64
	for _, l := range lines {
		for _, c := range l.cells {
			starts = append(starts, c.x)
		}
	}
	sort.Float64s(starts)

	var columns []float64
	for _, x := range starts {
		if len(columns) == 0 || x-columns[len(columns)-1] > columnTolerance*defaultFontSize {
			columns = append(columns, x)
		}
	}

	table := make(internal.Table, 0, len(lines))
	for _, l := range lines {
		var row internal.Row
		for _, c := range l.cells {
			col := columnIndex(columns, c.x)
			for len(row) <= col {
				row = append(row, "")
			}
			if row[col] != "" {
				row[col] += " " + c.text
			} else {
				row[col] = c.text
			}
		}
		table = append(table, row)
	}
	return table
}

func columnIndex(columns []float64, x float64) int {
	idx := sort.SearchFloat64s(columns, x+1e-6)
	if idx == 0 {
		return 0
	}
	return idx - 1
}

func fontSize(g pdf.Text) float64 {
	if g.FontSize <= 0 {
		return defaultFontSize
	}
	return g.FontSize
}
