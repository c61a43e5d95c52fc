package experiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/vsrbench/internal/grid"
)

// Shape is a named occupancy mask. Row 0 is the top row.
type Shape struct {
	Mask *grid.Grid[bool]
}

func Rect(w, h int) Shape {
	return Shape{Mask: grid.NewFilled(w, h, true)}
}

// ParseShape reads "WxH" for a full rectangle or rows of 0/1 separated by
// '-', top row first, e.g. "111-101".
func ParseShape(s string) (Shape, error) {
	s = strings.TrimSpace(s)
	if w, h, ok := strings.Cut(strings.ToLower(s), "x"); ok {
		wi, err1 := strconv.Atoi(w)
		hi, err2 := strconv.Atoi(h)
		if err1 != nil || err2 != nil || wi <= 0 || hi <= 0 {
			return Shape{}, fmt.Errorf("invalid shape %q: want WxH with positive sizes", s)
		}
		return Rect(wi, hi), nil
	}

	rows := strings.Split(s, "-")
	w := len(rows[0])
	if w == 0 {
		return Shape{}, fmt.Errorf("invalid shape %q: empty row", s)
	}
	mask := grid.New[bool](w, len(rows))
	filled := 0
	for y, row := range rows {
		if len(row) != w {
			return Shape{}, fmt.Errorf("invalid shape %q: row %d has %d cells, want %d", s, y, len(row), w)
		}
		for x, c := range row {
			switch c {
			case '1':
				mask.Set(x, y, true)
				filled++
			case '0':
			default:
				return Shape{}, fmt.Errorf("invalid shape %q: unexpected %q", s, c)
			}
		}
	}
	if filled == 0 {
		return Shape{}, fmt.Errorf("invalid shape %q: no voxels", s)
	}
	return Shape{Mask: mask}, nil
}

func (s Shape) W() int { return s.Mask.W() }
func (s Shape) H() int { return s.Mask.H() }

func (s Shape) Count() int {
	return s.Mask.Count(func(on bool) bool { return on })
}

// String is the "WxH" label used as the shape static key.
func (s Shape) String() string { return s.Mask.String() }
