package layout

import "image"

// MaskRuns converts a coverage mask into the row-run rectangles a shape
// request needs. Pixels with alpha above threshold are kept. Runs on
// consecutive rows with identical extents are merged.
func MaskRuns(mask *image.Alpha, threshold uint8) []image.Rectangle {
	if mask == nil {
		return nil
	}
	b := mask.Bounds()
	var out []image.Rectangle
	// open holds runs from the previous row that may still grow downwards.
	var open []image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		var row []image.Rectangle
		start := -1
		off := mask.PixOffset(b.Min.X, y)
		for x := b.Min.X; x <= b.Max.X; x++ {
			set := x < b.Max.X && mask.Pix[off+x-b.Min.X] > threshold
			if set && start < 0 {
				start = x
			}
			if !set && start >= 0 {
				row = append(row, image.Rect(start, y, x, y+1))
				start = -1
			}
		}

		next := row[:0:0]
		for _, r := range row {
			merged := false
			for i, o := range open {
				if o.Min.X == r.Min.X && o.Max.X == r.Max.X && o.Max.Y == y {
					open[i].Max.Y = y + 1
					next = append(next, open[i])
					open[i] = image.Rectangle{}
					merged = true
					break
				}
			}
			if !merged {
				next = append(next, r)
			}
		}
		for _, o := range open {
			if !o.Empty() {
				out = append(out, o)
			}
		}
		open = next
	}
	for _, o := range open {
		if !o.Empty() {
			out = append(out, o)
		}
	}
	return out
}
