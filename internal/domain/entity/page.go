package entity

// Rect is an element's bounding box in CSS pixels relative to the viewport.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
