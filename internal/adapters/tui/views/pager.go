package views

// pager tracks the selected row of the flattened tree and which page of
// rows is on screen. The page always follows the cursor: it is the page
// that contains the selected row.
type pager struct {
	size   int
	rows   int
	cursor int
}

func newPager(size int) *pager {
	if size <= 0 {
		size = 10
	}
	return &pager{size: size}
}

// setRows updates the row count and pulls the cursor back inside it
func (p *pager) setRows(n int) {
	p.rows = max(n, 0)
	p.selectRow(p.cursor)
}

// setSize changes the rows per page
func (p *pager) setSize(n int) {
	if n > 0 {
		p.size = n
	}
}

func (p *pager) selected() int {
	return p.cursor
}

// selectRow moves the cursor to i, clamped to the existing rows
func (p *pager) selectRow(i int) {
	p.cursor = min(max(i, 0), max(p.rows-1, 0))
}

// move shifts the cursor by delta rows
func (p *pager) move(delta int) {
	p.selectRow(p.cursor + delta)
}

// flip jumps delta pages and selects the first row of the new page.
// It does nothing when that page does not exist.
func (p *pager) flip(delta int) {
	first := (p.cursor/p.size + delta) * p.size
	if first < 0 || first >= p.rows {
		return
	}
	p.cursor = first
}

// window returns the half-open row range shown on the current page
func (p *pager) window() (start, end int) {
	start = p.cursor / p.size * p.size
	return start, min(start+p.size, p.rows)
}

// pages returns the 1-based current page and the page count
func (p *pager) pages() (current, count int) {
	count = max((p.rows+p.size-1)/p.size, 1)
	return p.cursor/p.size + 1, count
}
