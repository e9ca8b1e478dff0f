package extract

// grid is a rectangular view of a rendered table. Cells are raw text; short
// source rows are padded with empty cells, which clean to absent.
type grid [][]string

// pair is one (label, value) candidate before normalization
type pair struct {
	label string
	value string
}

// layout reduces a table of any known width to (label, value) pairs.
// Rules apply in sequence, so a rule's output width feeds the next rule.
type layout func(g grid) []pair

func newGrid(rows [][]string) grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := make(grid, 0, len(rows))
	for _, r := range rows {
		padded := make([]string, width)
		copy(padded, r)
		g = append(g, padded)
	}
	return g
}

func (g grid) width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// cols keeps columns [lo, hi), padding when the grid is narrower
func (g grid) cols(lo, hi int) grid {
	out := make(grid, len(g))
	for i, r := range g {
		row := make([]string, hi-lo)
		for c := lo; c < hi && c < len(r); c++ {
			row[c-lo] = r[c]
		}
		out[i] = row
	}
	return out
}

// drop removes the given column indexes
func (g grid) drop(idx ...int) grid {
	skip := make(map[int]bool, len(idx))
	for _, i := range idx {
		skip[i] = true
	}
	out := make(grid, len(g))
	for i, r := range g {
		row := make([]string, 0, len(r))
		for c, cell := range r {
			if !skip[c] {
				row = append(row, cell)
			}
		}
		out[i] = row
	}
	return out
}

// stack places the rows of b under the rows of a
func (g grid) stack(b grid) grid {
	out := make(grid, 0, len(g)+len(b))
	out = append(out, g...)
	return append(out, b...)
}

func (g grid) pairs() []pair {
	two := g.cols(0, 2)
	out := make([]pair, 0, len(two))
	for _, r := range two {
		out = append(out, pair{label: r[0], value: r[1]})
	}
	return out
}

func balanceSheetLayout(g grid) []pair {
	if g.width() == 12 {
		g = g.cols(1, 3)
	}
	if g.width() == 10 {
		g = g.drop(0, 5)
	}
	if g.width() < 5 {
		return g.pairs()
	}
	return g.cols(0, 2).stack(g.cols(4, 6)).pairs()
}

func profitLossLayout(g grid) []pair {
	if g.width() == 24 {
		g = g.cols(3, 5)
	}
	if g.width() == 12 {
		g = g.cols(1, 3)
	}
	if g.width() == 5 {
		g = g.drop(0)
	}
	return g.pairs()
}

func cashFlowLayout(g grid) []pair {
	if g.width() == 12 {
		g = g.cols(1, 3)
	}
	return g.pairs()
}

// layoutFor returns the layout policy of a sheet kind
func layoutFor(kind SheetKind) layout {
	switch kind {
	case BalanceSheet:
		return balanceSheetLayout
	case ProfitLoss:
		return profitLossLayout
	default:
		return cashFlowLayout
	}
}
