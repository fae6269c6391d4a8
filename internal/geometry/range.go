package geometry

// Range is an iteration plan over tile cells. Rows run top to bottom in the
// outer loop. Rectangular plans visit columns left to right; paired plans
// (columns staggered along x) visit columns two at a time so the raised
// column of each pair is drawn before the lowered one.
type Range struct {
	XStart, XStop int // Columns; exclusive stop for rectangular plans
	YStart, YStop int // Rows, [YStart, YStop)

	paired bool // Staggered-x pair iteration
	index  int  // Stagger index, 1 = even
	limit  int  // Exclusive column bound for paired plans
}

// Clamp restricts the range to a width x height map.
func (r Range) Clamp(width, height int) Range {
	r.XStart = max(r.XStart, 0)
	r.YStart = max(r.YStart, 0)
	r.XStop = min(r.XStop, width)
	r.YStop = min(r.YStop, height)
	if r.paired {
		r.limit = min(r.limit, width)
	}
	return r
}

// Each calls fn for every cell of the plan, in draw order.
func (r Range) Each(fn func(col, row int)) {
	if r.paired {
		r.eachPaired(fn)
		return
	}
	for row := r.YStart; row < r.YStop; row++ {
		for col := r.XStart; col < r.XStop; col++ {
			fn(col, row)
		}
	}
}

// eachPaired walks even column boundaries up to and including XStop, and
// for each visits column nx+index then nx+index-1.
func (r Range) eachPaired(fn func(col, row int)) {
	for row := r.YStart; row < r.YStop; row++ {
		for nx := r.XStart; nx <= r.XStop; nx += 2 {
			for nz := r.index; nz >= r.index-1; nz-- {
				col := nx + nz
				if col >= 0 && col < r.limit {
					fn(col, row)
				}
			}
		}
	}
}

// Count returns the number of cells Each visits.
func (r Range) Count() int {
	n := 0
	r.Each(func(int, int) { n++ })
	return n
}

// Empty reports whether Each visits no cell.
func (r Range) Empty() bool {
	return r.Count() == 0
}
