package extract

import (
	"sort"
	"strings"

	"github.com/hyperjump/henkan/internal/models"
)

// textRun is one positioned text fragment from a PDF page. Coordinates are
// PDF points with the origin at the bottom-left corner.
type textRun struct {
	X        float64
	Y        float64
	W        float64
	FontSize float64
	S        string
}

const (
	// Runs whose baselines differ by at most lineTolerance belong to one line.
	lineTolerance = 2.5
	// A horizontal gap of at least cellGapFactor times the font size splits a
	// line into separate cells.
	cellGapFactor = 1.5
	minCellGap    = 6.0
	// A table needs at least this many lines and columns.
	minTableLines   = 2
	minTableColumns = 2
)

// cell is a merged run of text with its starting X position.
type cell struct {
	x    float64
	text string
}

// line is one visual text line: its cells, ordered left to right.
type line struct {
	y     float64
	cells []cell
}

// detectTables finds tabular regions in a page's text runs. Lines are formed
// by Y proximity, split into cells at large horizontal gaps, and consecutive
// multi-cell lines are grouped into blocks. Each block with a stable column
// structure becomes a table whose first line is the header row.
func detectTables(runs []textRun) []models.Table {
	lines := buildLines(runs)

	var tables []models.Table
	var block []line
	flush := func() {
		if t, ok := tableFromBlock(block); ok {
			tables = append(tables, t)
		}
		block = nil
	}
	for _, ln := range lines {
		if len(ln.cells) >= minTableColumns {
			block = append(block, ln)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// buildLines groups runs into visual lines (top to bottom) and merges runs
// into cells, splitting where the horizontal gap is wide.
func buildLines(runs []textRun) []line {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	// Top of page first: PDF Y grows upward.
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	var current []textRun
	for _, r := range sorted {
		if len(current) == 0 || current[0].Y-r.Y <= lineTolerance {
			current = append(current, r)
			continue
		}
		lines = append(lines, mergeLine(current))
		current = []textRun{r}
	}
	if len(current) > 0 {
		lines = append(lines, mergeLine(current))
	}
	return lines
}

func mergeLine(runs []textRun) line {
	sort.Slice(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	ln := line{y: runs[0].Y}
	cur := cell{x: runs[0].X, text: runs[0].S}
	end := runs[0].X + runs[0].W
	for _, r := range runs[1:] {
		gap := r.X - end
		if gap >= cellGap(r.FontSize) {
			ln.cells = append(ln.cells, cur)
			cur = cell{x: r.X, text: r.S}
		} else {
			if gap > 0.15*maxFloat(r.FontSize, 1) {
				cur.text += " "
			}
			cur.text += r.S
		}
		if e := r.X + r.W; e > end {
			end = e
		}
	}
	ln.cells = append(ln.cells, cur)
	for i := range ln.cells {
		ln.cells[i].text = strings.TrimSpace(ln.cells[i].text)
	}
	return ln
}

func cellGap(fontSize float64) float64 {
	g := fontSize * cellGapFactor
	if g < minCellGap {
		return minCellGap
	}
	return g
}

// tableFromBlock converts a run of consecutive multi-cell lines into a table.
// Column start positions come from the line with the most cells; every cell
// is then assigned to its nearest column, concatenating on collision.
func tableFromBlock(block []line) (models.Table, bool) {
	if len(block) < minTableLines {
		return models.Table{}, false
	}
	template := block[0]
	for _, ln := range block[1:] {
		if len(ln.cells) > len(template.cells) {
			template = ln
		}
	}
	cols := make([]float64, len(template.cells))
	for i, c := range template.cells {
		cols[i] = c.x
	}
	if len(cols) < minTableColumns {
		return models.Table{}, false
	}

	grid := make([][]string, len(block))
	for i, ln := range block {
		row := make([]string, len(cols))
		for _, c := range ln.cells {
			idx := nearestColumn(cols, c.x)
			if row[idx] != "" {
				row[idx] += " "
			}
			row[idx] += c.text
		}
		grid[i] = row
	}

	t := models.Table{Headers: grid[0], Rows: grid[1:]}
	t.Normalize()
	return t, true
}

// nearestColumn returns the index of the column start closest to x. Cells
// that align with no column snap to the closest one rather than being dropped.
func nearestColumn(cols []float64, x float64) int {
	best := 0
	bestDist := distance(cols[0], x)
	for i := 1; i < len(cols); i++ {
		if d := distance(cols[i], x); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func distance(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
