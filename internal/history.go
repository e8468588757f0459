package hostmon

import "sync"

// History keeps the most recent readings for the rolling chart.
// It is safe for concurrent use.
type History struct {
	mu       sync.RWMutex
	size     int
	readings []Reading
}

// NewHistory creates a window holding at most size readings
func NewHistory(size int) *History {
	if size < 1 {
		size = WINDOW_SIZE
	}
	return &History{
		size:     size,
		readings: make([]Reading, 0, size),
	}
}

// Add appends a reading, evicting the oldest once the window is full
func (h *History) Add(r Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.readings = append(h.readings, r)
	if len(h.readings) > h.size {
		// copy down instead of reslicing so the backing array stays bounded
		n := copy(h.readings, h.readings[len(h.readings)-h.size:])
		clear(h.readings[n:])
		h.readings = h.readings[:n]
	}
}

// Size returns the window capacity
func (h *History) Size() int {
	return h.size
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.readings)
}

// Latest returns the newest reading
func (h *History) Latest() (Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.readings) == 0 {
		return Reading{}, false
	}
	return h.readings[len(h.readings)-1], true
}

// Snapshot returns a copy of the window, oldest first
func (h *History) Snapshot() []Reading {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Reading, len(h.readings))
	copy(out, h.readings)
	return out
}

// SeriesStats is the min, mean and max of a series
type SeriesStats struct {
	Min   float64
	Avg   float64
	Max   float64
	Count int
}

func seriesOf(readings []Reading, m Metric) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value(m)
	}
	return values
}

func labelsOf(readings []Reading) []string {
	labels := make([]string, len(readings))
	for i, r := range readings {
		labels[i] = r.Clock()
	}
	return labels
}

func statsOf(values []float64) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}
	s := SeriesStats{Min: values[0], Max: values[0], Count: len(values)}
	sum := 0.0
	for _, v := range values {
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Avg = round1(sum / float64(len(values)))
	return s
}
