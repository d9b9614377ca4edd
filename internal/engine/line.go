package engine

type Direction int

const (
	Horizontal Direction = iota
	Vertical
	RisingDiagonal
	FallingDiagonal
)

var directionNames = [...]string{"horizontal", "vertical", "rising", "falling"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// step is the (dx, dy) between consecutive cells of a line.
var steps = [...][2]int{
	Horizontal:      {1, 0},
	Vertical:        {0, 1},
	RisingDiagonal:  {1, 1},
	FallingDiagonal: {1, -1},
}

// Line is a run of winLength cells. Cells holds indices into the rack's
// cell slice, ordered from the start cell along the direction.
type Line struct {
	Dir   Direction
	X, Y  int
	Cells []int
}

// layout is shared by every rack with the same dimensions.
type layout struct {
	width     int
	height    int
	winLength int
	lines     []Line
}

func newLayout(width, height, winLength int) *layout {
	l := &layout{width: width, height: height, winLength: winLength}
	n := winLength

	// rows
	for y := 0; y < height; y++ {
		for x := 0; x+n <= width; x++ {
			l.add(Horizontal, x, y)
		}
	}
	// columns
	for x := 0; x < width; x++ {
		for y := 0; y+n <= height; y++ {
			l.add(Vertical, x, y)
		}
	}
	for x := 0; x+n <= width; x++ {
		for y := 0; y+n <= height; y++ {
			l.add(RisingDiagonal, x, y)
		}
	}
	for x := 0; x+n <= width; x++ {
		for y := n - 1; y < height; y++ {
			l.add(FallingDiagonal, x, y)
		}
	}
	return l
}

func (l *layout) add(dir Direction, x, y int) {
	step := steps[dir]
	cells := make([]int, l.winLength)
	for i := range cells {
		cells[i] = l.index(x+step[0]*i, y+step[1]*i)
	}
	l.lines = append(l.lines, Line{Dir: dir, X: x, Y: y, Cells: cells})
}

func (l *layout) index(x, y int) int {
	return x*l.height + y
}

func (l *layout) size() int {
	return l.width * l.height
}

// LineCount is the number of lines a width x height board holds for the
// given win length.
func LineCount(width, height, winLength int) int {
	if winLength <= 0 {
		return 0
	}
	w := max(width-winLength+1, 0)
	h := max(height-winLength+1, 0)
	return height*w + width*h + 2*w*h
}
