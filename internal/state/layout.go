package state

import "github.com/shvbsle/shev/internal/graphic"

// Side bar geometry in logical space.
const (
	ListRows      = 37
	ListTop       = 20.0
	RowHeight     = 17.6
	listGlyphSize = 15.0
	listAdvance   = 8.0

	scrollBarMinEntries = 33
	scrollBarTop        = 20.0
	scrollBarHeight     = 640.0
	bucketHeight        = 5.0

	TopBarHeight = 120.0
)

// SideBar is the horizontal extent of the side bar.
type SideBar struct {
	X        float64
	W        float64
	TitleMax int
}

// SideBarLayout returns the side bar geometry for the wide or narrow bar.
func SideBarLayout(wide bool) SideBar {
	if wide {
		return SideBar{X: 600, W: 480, TitleMax: 36}
	}
	return SideBar{X: 900, W: 180, TitleMax: 8}
}

// ExpandButton is the hot zone that toggles the side bar width.
func ExpandButton(wide bool) graphic.Bounds {
	if wide {
		return graphic.Bounds{X: 584, Y: 344, W: 32, H: 32}
	}
	return graphic.Bounds{X: 884, Y: 344, W: 32, H: 32}
}

// ListWindow returns the half open range of entries shown in the side bar.
// The cursor is kept in the middle row while there is room for it.
func ListWindow(cursor, n int) (start, end int) {
	start = max(cursor, ListRows/2) - ListRows/2
	end = min(start+ListRows, n)
	if end < start+ListRows {
		start = max(end, ListRows) - ListRows
	}
	return start, end
}

// rowBaseline is the baseline of the row-th visible list row.
func rowBaseline(row int) float64 {
	return ListTop + float64(row)*RowHeight
}

// RowBounds is the hover zone of the row-th visible list row.
func (s SideBar) RowBounds(row int) graphic.Bounds {
	y := rowBaseline(row)
	return graphic.Bounds{X: s.X + 5, Y: y - RowHeight, W: s.W - 40, H: RowHeight}
}

// HitRow returns the entry under p, if any.
func HitRow(wide bool, cursor, n int, p graphic.Point) (int, bool) {
	sb := SideBarLayout(wide)
	start, end := ListWindow(cursor, n)
	for i := start; i < end; i++ {
		if sb.RowBounds(i - start).Contains(p) {
			return i, true
		}
	}
	return 0, false
}
