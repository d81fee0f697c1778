package twin

// Point is one element of the display series. Index is positional rank in
// the window, not wall-clock time; it is reassigned on every eviction.
type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Series is the bounded FIFO window of scalar points rendered as the
// vibration chart. Appending beyond capacity evicts from the front and
// reindexes the remaining points to 0..len-1.
type Series struct {
	capacity int
	points   []Point
}

// NewSeries creates an empty series with the given capacity. Capacity must
// be positive; Config.Validate enforces this before a Series is built.
func NewSeries(capacity int) *Series {
	return &Series{capacity: capacity}
}

// Append adds a value at the tail, evicting the oldest point when the
// window is full.
func (s *Series) Append(value float64) {
	s.points = append(s.points, Point{Value: value})
	if len(s.points) > s.capacity {
		s.points = s.points[len(s.points)-s.capacity:]
	}
	s.reindex()
}

func (s *Series) reindex() {
	for i := range s.points {
		s.points[i].Index = i
	}
}

// Reset drops all points, keeping the capacity.
func (s *Series) Reset() {
	s.points = s.points[:0]
}

// Len returns the number of points currently in the window.
func (s *Series) Len() int {
	return len(s.points)
}

// Last returns the most recent value, or false when the series is empty.
func (s *Series) Last() (float64, bool) {
	if len(s.points) == 0 {
		return 0, false
	}
	return s.points[len(s.points)-1].Value, true
}

// Points returns a copy of the window; callers may retain or mutate it
// freely.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}
